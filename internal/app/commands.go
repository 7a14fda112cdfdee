package app

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"lovehome/internal/domain"
)

type CommandService struct {
	repo        domain.HouseRepository
	images      domain.ImageStore
	imageDomain string
}

func NewCommandService(r domain.HouseRepository, img domain.ImageStore, imageDomain string) *CommandService {
	return &CommandService{repo: r, images: img, imageDomain: imageDomain}
}

// PublishHouseParams carries the publish form. Monetary amounts arrive as
// major-unit text ("12.50") and are converted to minor units exactly once
// here; nothing downstream ever sees a float.
type PublishHouseParams struct {
	Title     string
	Price     string
	AreaID    int64
	Address   string
	RoomCount int
	Acreage   int
	Unit      string
	Capacity  int
	Beds      string
	Deposit   string
	MinDays   int
	MaxDays   int
}

func (p PublishHouseParams) validate() error {
	switch {
	case p.Title == "", p.Price == "", p.Address == "", p.Unit == "",
		p.Beds == "", p.Deposit == "":
		return fmt.Errorf("%w: missing field", domain.ErrInvalidParam)
	case p.AreaID <= 0, p.RoomCount <= 0, p.Acreage <= 0, p.Capacity <= 0,
		p.MinDays <= 0, p.MaxDays <= 0:
		return fmt.Errorf("%w: non-positive field", domain.ErrInvalidParam)
	}
	return nil
}

func (s *CommandService) PublishHouse(ctx context.Context, userID int64, p PublishHouseParams) (int64, error) {
	if err := p.validate(); err != nil {
		return 0, err
	}
	price, err := toMinorUnits(p.Price)
	if err != nil {
		return 0, err
	}
	deposit, err := toMinorUnits(p.Deposit)
	if err != nil {
		return 0, err
	}

	h := domain.House{
		UserID:    userID,
		Title:     p.Title,
		Price:     price,
		AreaID:    p.AreaID,
		Address:   p.Address,
		RoomCount: p.RoomCount,
		Acreage:   p.Acreage,
		Unit:      p.Unit,
		Capacity:  p.Capacity,
		Beds:      p.Beds,
		Deposit:   deposit,
		MinDays:   p.MinDays,
		MaxDays:   p.MaxDays,
	}
	if err := s.repo.InsertHouse(ctx, &h); err != nil {
		return 0, err
	}
	log.Info().Int64("house_id", h.ID).Int64("user_id", userID).Msg("house published")
	return h.ID, nil
}

// SaveHouseImage uploads the image, records it, and promotes it to cover
// image when the house has none yet. Returns the public URL.
func (s *CommandService) SaveHouseImage(ctx context.Context, houseID int64, data []byte) (string, error) {
	if houseID <= 0 || len(data) == 0 {
		return "", fmt.Errorf("%w: house image", domain.ErrInvalidParam)
	}
	if _, err := s.repo.GetHouse(ctx, houseID); err != nil {
		return "", err
	}

	name, err := s.images.Upload(ctx, data)
	if err != nil {
		return "", fmt.Errorf("%w: upload: %v", domain.ErrThirdParty, err)
	}

	if err := s.repo.InsertHouseImage(ctx, houseID, name); err != nil {
		return "", err
	}
	if err := s.repo.SetIndexImage(ctx, houseID, name); err != nil {
		return "", err
	}
	return s.imageDomain + name, nil
}

// toMinorUnits converts major-unit text to integer minor units
// (round(major * 100)). This is the single place the conversion happens.
func toMinorUnits(amount string) (int64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(amount), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0, fmt.Errorf("%w: amount %q", domain.ErrInvalidParam, amount)
	}
	return int64(math.Round(f * 100)), nil
}
