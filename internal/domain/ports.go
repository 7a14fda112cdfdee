package domain

import (
	"context"
	"time"
)

type HouseRepository interface {
	// Write paths
	InsertArea(ctx context.Context, a *Area) error
	InsertHouse(ctx context.Context, h *House) error
	InsertHouseImage(ctx context.Context, houseID int64, url string) error
	SetIndexImage(ctx context.Context, houseID int64, url string) error
	InsertOrder(ctx context.Context, o *Order) error

	// Read paths
	ListAreas(ctx context.Context) ([]Area, error)
	GetHouse(ctx context.Context, id int64) (HouseDetailView, error)
	ListUserHouses(ctx context.Context, userID int64) ([]HouseListItem, error)
	ListTopBooked(ctx context.Context, limit int) ([]HouseListItem, error)
	ConflictHouseIDs(ctx context.Context, start, end *time.Time) ([]int64, error)
	SearchHouses(ctx context.Context, q HouseSearch) ([]HouseListItem, int, error)
}

type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
	// GetField/SetField address one field of a shared record; SetField
	// commits the field value and the record TTL together.
	GetField(ctx context.Context, key, field string) ([]byte, bool, error)
	SetField(ctx context.Context, key, field string, val []byte, ttl time.Duration) error
}

type ImageStore interface {
	Upload(ctx context.Context, data []byte) (string, error)
}

// Read models & queries

type HouseListItem struct {
	HouseID    int64  `json:"house_id"`
	Title      string `json:"title"`
	Price      int64  `json:"price"`
	AreaName   string `json:"area_name"`
	ImgURL     string `json:"img_url"`
	RoomCount  int    `json:"room_count"`
	OrderCount int    `json:"order_count"`
	Address    string `json:"address"`
	CreatedAt  string `json:"ctime"`
}

type HouseDetailView struct {
	HouseID   int64    `json:"hid"`
	UserID    int64    `json:"user_id"`
	Title     string   `json:"title"`
	Price     int64    `json:"price"`
	AreaName  string   `json:"area_name"`
	Address   string   `json:"address"`
	RoomCount int      `json:"room_count"`
	Acreage   int      `json:"acreage"`
	Unit      string   `json:"unit"`
	Capacity  int      `json:"capacity"`
	Beds      string   `json:"beds"`
	Deposit   int64    `json:"deposit"`
	MinDays   int      `json:"min_days"`
	MaxDays   int      `json:"max_days"`
	ImgURLs   []string `json:"img_urls"`
}

// HouseSearch is the fully-resolved store query: the availability
// exclusion set is already computed, the sort key already validated.
type HouseSearch struct {
	AreaID      string // opaque token; empty means no area filter
	ExcludedIDs []int64
	SortKey     string
	Limit       int
	Offset      int
}
