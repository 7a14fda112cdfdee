package app

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"lovehome/internal/domain"
)

const (
	houseListPageSize = 2
	homePageMaxHouses = 5
	dateLayout        = "2006-01-02"
)

// TTLs holds the expiry per cached surface.
type TTLs struct {
	Area   time.Duration
	Index  time.Duration
	Detail time.Duration
	List   time.Duration
}

type QueryService struct {
	repo  domain.HouseRepository
	cache domain.Cache
	ttl   TTLs
}

func NewQueryService(r domain.HouseRepository, c domain.Cache, ttl TTLs) *QueryService {
	return &QueryService{repo: r, cache: c, ttl: ttl}
}

// SearchQuery is the validated-at-the-edge parameter set for a house
// search. All fields are optional except Page; empty strings mean absent.
type SearchQuery struct {
	AreaID    string
	StartDate string
	EndDate   string
	SortKey   string
	Page      int
}

// Areas returns the area list as serialized JSON, read through the cache.
func (s *QueryService) Areas(ctx context.Context) (json.RawMessage, error) {
	if raw, ok := s.cacheGet(ctx, areaInfoKey); ok {
		return raw, nil
	}

	areas, err := s.repo.ListAreas(ctx)
	if err != nil {
		return nil, err
	}
	if len(areas) == 0 {
		return nil, domain.ErrNoData
	}

	raw, err := json.Marshal(areas)
	if err != nil {
		return nil, err
	}
	s.cacheSet(ctx, areaInfoKey, raw, s.ttl.Area)
	return raw, nil
}

// HomePage returns the most-booked houses that have a cover image set.
// Houses without one are dropped after the scan, so fewer than the
// maximum may come back even when more exist.
func (s *QueryService) HomePage(ctx context.Context) (json.RawMessage, error) {
	if raw, ok := s.cacheGet(ctx, homePageKey); ok {
		return raw, nil
	}

	items, err := s.repo.ListTopBooked(ctx, homePageMaxHouses)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, domain.ErrNoData
	}

	withCover := make([]domain.HouseListItem, 0, len(items))
	for _, it := range items {
		if it.ImgURL == "" {
			continue
		}
		withCover = append(withCover, it)
	}

	raw, err := json.Marshal(withCover)
	if err != nil {
		return nil, err
	}
	s.cacheSet(ctx, homePageKey, raw, s.ttl.Index)
	return raw, nil
}

// HouseDetail returns the serialized house view. The caller identity is
// never part of the cached value; the transport layer attaches it fresh.
func (s *QueryService) HouseDetail(ctx context.Context, houseID int64) (json.RawMessage, error) {
	if houseID <= 0 {
		return nil, fmt.Errorf("%w: house id", domain.ErrInvalidParam)
	}

	key := detailKey(houseID)
	if raw, ok := s.cacheGet(ctx, key); ok {
		return raw, nil
	}

	hv, err := s.repo.GetHouse(ctx, houseID)
	if err != nil {
		return nil, err
	}
	if hv.ImgURLs == nil {
		hv.ImgURLs = []string{}
	}

	raw, err := json.Marshal(hv)
	if err != nil {
		return nil, err
	}
	s.cacheSet(ctx, key, raw, s.ttl.Detail)
	return raw, nil
}

// UserHouses lists the caller's published houses. Not cached: the owner
// expects to see a just-published house immediately.
func (s *QueryService) UserHouses(ctx context.Context, userID int64) ([]domain.HouseListItem, error) {
	items, err := s.repo.ListUserHouses(ctx, userID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.HouseListItem{}
	}
	return items, nil
}

// SearchHouses answers the availability-aware list query and returns the
// complete serialized envelope, which is also what gets cached per page.
// A repeated query within the TTL therefore returns the stored bytes
// unchanged.
func (s *QueryService) SearchHouses(ctx context.Context, q SearchQuery) (json.RawMessage, error) {
	start, end, err := parseDateRange(q.StartDate, q.EndDate)
	if err != nil {
		return nil, err
	}
	if q.Page < 1 {
		return nil, fmt.Errorf("%w: page %d", domain.ErrInvalidParam, q.Page)
	}

	key := listKey(q.AreaID, q.StartDate, q.EndDate, q.SortKey)
	field := strconv.Itoa(q.Page)
	if raw, ok := s.cacheGetField(ctx, key, field); ok {
		return raw, nil
	}

	excluded, err := s.repo.ConflictHouseIDs(ctx, start, end)
	if err != nil {
		return nil, err
	}

	items, total, err := s.repo.SearchHouses(ctx, domain.HouseSearch{
		AreaID:      q.AreaID,
		ExcludedIDs: excluded,
		SortKey:     q.SortKey,
		Limit:       houseListPageSize,
		Offset:      (q.Page - 1) * houseListPageSize,
	})
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.HouseListItem{}
	}
	totalPage := (total + houseListPageSize - 1) / houseListPageSize

	raw, err := json.Marshal(OK(houseListData{
		Houses:      items,
		TotalPage:   totalPage,
		CurrentPage: q.Page,
	}))
	if err != nil {
		return nil, err
	}

	// An out-of-range page is a valid empty result but not worth a slot
	// in the shared record.
	if q.Page <= totalPage {
		s.cacheSetField(ctx, key, field, raw, s.ttl.List)
	}
	return raw, nil
}

// parseDateRange validates the optional date bounds before any store
// access. Both supplied and inverted is a parameter error.
func parseDateRange(startStr, endStr string) (*time.Time, *time.Time, error) {
	var start, end *time.Time
	if startStr != "" {
		t, err := time.Parse(dateLayout, startStr)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: start date %q", domain.ErrInvalidParam, startStr)
		}
		start = &t
	}
	if endStr != "" {
		t, err := time.Parse(dateLayout, endStr)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: end date %q", domain.ErrInvalidParam, endStr)
		}
		end = &t
	}
	if start != nil && end != nil && start.After(*end) {
		return nil, nil, fmt.Errorf("%w: start date after end date", domain.ErrInvalidParam)
	}
	return start, end, nil
}

// ---- soft-failure cache access ----
// The cache is advisory: any backend fault is logged and degraded to a
// miss (reads) or a no-op (writes). Store errors are the only hard ones.

func (s *QueryService) cacheGet(ctx context.Context, key string) (json.RawMessage, bool) {
	raw, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache get failed")
		return nil, false
	}
	return raw, ok
}

func (s *QueryService) cacheSet(ctx context.Context, key string, val []byte, ttl time.Duration) {
	if err := s.cache.Set(ctx, key, val, ttl); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache set failed")
	}
}

func (s *QueryService) cacheGetField(ctx context.Context, key, field string) (json.RawMessage, bool) {
	raw, ok, err := s.cache.GetField(ctx, key, field)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Str("field", field).Msg("cache hget failed")
		return nil, false
	}
	return raw, ok
}

func (s *QueryService) cacheSetField(ctx context.Context, key, field string, val []byte, ttl time.Duration) {
	if err := s.cache.SetField(ctx, key, field, val, ttl); err != nil {
		log.Warn().Err(err).Str("key", key).Str("field", field).Msg("cache hset failed")
	}
}
