package mysql

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"lovehome/internal/domain"
)

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

// Sort clauses keyed by the public sort tokens; anything else falls back
// to newest-first.
var orderClauses = map[string]string{
	"booking":   "h.order_count DESC",
	"price-inc": "h.price ASC",
	"price-des": "h.price DESC",
}

const defaultOrderClause = "h.create_time DESC"

func (r *Repo) InsertArea(ctx context.Context, a *domain.Area) error {
	res, err := r.db.ExecContext(ctx, insertAreaSQL, a.Name)
	if err != nil {
		return err
	}
	a.ID, err = res.LastInsertId()
	return err
}

func (r *Repo) InsertHouse(ctx context.Context, h *domain.House) error {
	res, err := r.db.ExecContext(ctx, insertHouseSQL,
		h.UserID,
		h.Title,
		h.Price,
		h.AreaID,
		h.Address,
		h.RoomCount,
		h.Acreage,
		h.Unit,
		h.Capacity,
		h.Beds,
		h.Deposit,
		h.MinDays,
		h.MaxDays,
	)
	if err != nil {
		return err
	}
	h.ID, err = res.LastInsertId()
	return err
}

func (r *Repo) InsertHouseImage(ctx context.Context, houseID int64, url string) error {
	_, err := r.db.ExecContext(ctx, insertHouseImageSQL, houseID, url)
	return err
}

// SetIndexImage promotes url to cover image only if none is set yet.
func (r *Repo) SetIndexImage(ctx context.Context, houseID int64, url string) error {
	_, err := r.db.ExecContext(ctx, setIndexImageSQL, url, houseID)
	return err
}

func (r *Repo) InsertOrder(ctx context.Context, o *domain.Order) error {
	res, err := r.db.ExecContext(ctx, insertOrderSQL, o.HouseID, o.BeginDate, o.EndDate, o.Status)
	if err != nil {
		return err
	}
	o.ID, err = res.LastInsertId()
	return err
}

func (r *Repo) ListAreas(ctx context.Context) ([]domain.Area, error) {
	rows, err := r.db.QueryContext(ctx, listAreasSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Area
	for rows.Next() {
		var a domain.Area
		if err := rows.Scan(&a.ID, &a.Name); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *Repo) GetHouse(ctx context.Context, id int64) (domain.HouseDetailView, error) {
	row := r.db.QueryRowContext(ctx, getHouseSQL, id)

	var hv domain.HouseDetailView
	if err := row.Scan(
		&hv.HouseID,
		&hv.UserID,
		&hv.Title,
		&hv.Price,
		&hv.AreaName,
		&hv.Address,
		&hv.RoomCount,
		&hv.Acreage,
		&hv.Unit,
		&hv.Capacity,
		&hv.Beds,
		&hv.Deposit,
		&hv.MinDays,
		&hv.MaxDays,
	); err != nil {
		if err == sql.ErrNoRows {
			return domain.HouseDetailView{}, domain.ErrNotFound
		}
		return domain.HouseDetailView{}, err
	}

	imgs, err := r.db.QueryContext(ctx, listHouseImagesSQL, id)
	if err != nil {
		return domain.HouseDetailView{}, err
	}
	defer imgs.Close()
	for imgs.Next() {
		var u string
		if err := imgs.Scan(&u); err != nil {
			return domain.HouseDetailView{}, err
		}
		hv.ImgURLs = append(hv.ImgURLs, u)
	}
	return hv, imgs.Err()
}

func (r *Repo) ListUserHouses(ctx context.Context, userID int64) ([]domain.HouseListItem, error) {
	return r.queryListItems(ctx, listUserHousesSQL, userID)
}

func (r *Repo) ListTopBooked(ctx context.Context, limit int) ([]domain.HouseListItem, error) {
	return r.queryListItems(ctx, listTopBookedSQL, limit)
}

func (r *Repo) ConflictHouseIDs(ctx context.Context, start, end *time.Time) ([]int64, error) {
	var (
		query string
		args  []any
	)
	switch {
	case start != nil && end != nil:
		query, args = conflictBothSQL, []any{*end, *start}
	case start != nil:
		query, args = conflictStartSQL, []any{*start}
	case end != nil:
		query, args = conflictEndSQL, []any{*end}
	default:
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *Repo) SearchHouses(ctx context.Context, q domain.HouseSearch) ([]domain.HouseListItem, int, error) {
	var (
		preds []string
		args  []any
	)
	if q.AreaID != "" {
		preds = append(preds, "h.area_id = ?")
		args = append(args, q.AreaID)
	}
	if len(q.ExcludedIDs) > 0 {
		ph := strings.TrimSuffix(strings.Repeat("?,", len(q.ExcludedIDs)), ",")
		preds = append(preds, "h.id NOT IN ("+ph+")")
		for _, id := range q.ExcludedIDs {
			args = append(args, id)
		}
	}
	var where string
	if len(preds) > 0 {
		where = " WHERE " + strings.Join(preds, " AND ")
	}

	var total int
	countSQL := "SELECT COUNT(*) FROM houses h" + where
	if err := r.db.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	clause, ok := orderClauses[q.SortKey]
	if !ok {
		clause = defaultOrderClause
	}
	listSQL := listItemSelect + where + " ORDER BY " + clause + " LIMIT ? OFFSET ?"
	items, err := r.queryListItems(ctx, listSQL, append(args, q.Limit, q.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *Repo) queryListItems(ctx context.Context, query string, args ...any) ([]domain.HouseListItem, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.HouseListItem
	for rows.Next() {
		var (
			it      domain.HouseListItem
			created time.Time
		)
		if err := rows.Scan(
			&it.HouseID,
			&it.Title,
			&it.Price,
			&it.AreaName,
			&it.ImgURL,
			&it.RoomCount,
			&it.OrderCount,
			&it.Address,
			&created,
		); err != nil {
			return nil, err
		}
		it.CreatedAt = created.Format("2006-01-02 15:04:05")
		out = append(out, it)
	}
	return out, rows.Err()
}
