package domain

import (
	"errors"
	"time"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrNoData       = errors.New("no data")
	ErrInvalidParam = errors.New("invalid parameter")
	ErrThirdParty   = errors.New("third-party service failed")
)

// House is the listing record. Price and Deposit are minor currency units
// (fen); the major-to-minor conversion happens once, at publish time.
type House struct {
	ID            int64
	UserID        int64
	Title         string
	Price         int64
	AreaID        int64
	Address       string
	RoomCount     int
	Acreage       int
	Unit          string
	Capacity      int
	Beds          string
	Deposit       int64
	MinDays       int
	MaxDays       int
	IndexImageURL *string
	OrderCount    int
	CreatedAt     time.Time
}

type Area struct {
	ID   int64  `json:"aid"`
	Name string `json:"aname"`
}

// Order is read-only inside this service; booking flows write it.
// BeginDate <= EndDate is guaranteed by the writer.
type Order struct {
	ID        int64
	HouseID   int64
	BeginDate time.Time
	EndDate   time.Time
	Status    string
}

type HouseImage struct {
	ID      int64
	HouseID int64
	URL     string
}
