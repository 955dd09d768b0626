// Command seed loads a small demo catalog: one cinema with room R1, a
// movie with categories and crew, and a week of evening screenings.
package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/cinema-booking/internal/config"
	"github.com/iliyamo/cinema-booking/internal/database"
	"github.com/iliyamo/cinema-booking/internal/model"
	"github.com/iliyamo/cinema-booking/internal/repository"
)

func main() {
	cfg := config.Load()
	log := config.NewLogger(cfg)
	ctx := context.Background()

	db, err := database.Open(cfg)
	if err != nil {
		log.WithError(err).Fatal("open database")
	}
	defer db.Close()
	if err := database.Migrate(ctx, db); err != nil {
		log.WithError(err).Fatal("migrate database")
	}

	var screenings int
	err = db.InTx(ctx, false, func(tx *sqlx.Tx) error {
		n, err := seed(ctx, tx)
		screenings = n
		return err
	})
	if err != nil {
		log.WithError(err).Fatal("seed failed")
	}
	log.WithField("screenings", screenings).Info("seed complete")
}

func seed(ctx context.Context, tx *sqlx.Tx) (int, error) {
	cinemas := repository.NewCinemaRepo(tx)
	categories := repository.NewCategoryRepo(tx)
	movies := repository.NewMovieRepo(tx)
	rooms := repository.NewRoomRepo(tx)
	seats := repository.NewSeatRepo(tx)
	shows := repository.NewScreeningRepo(tx)

	city := &model.City{Name: "Tehran"}
	if err := cinemas.CreateCity(ctx, city); err != nil {
		return 0, fmt.Errorf("city: %w", err)
	}
	cinema := &model.Cinema{CityID: city.ID, Name: "Azadi", Address: "Beheshti St."}
	if err := cinemas.Create(ctx, cinema); err != nil {
		return 0, fmt.Errorf("cinema: %w", err)
	}

	genre := &model.Category{Name: "Genre"}
	if err := categories.Create(ctx, genre); err != nil {
		return 0, fmt.Errorf("category: %w", err)
	}
	drama := &model.Category{Name: "Drama", ParentID: &genre.ID}
	if err := categories.Create(ctx, drama); err != nil {
		return 0, fmt.Errorf("category: %w", err)
	}

	movie := &model.Movie{
		Name:            "A Separation",
		Slug:            "a-separation",
		ReleaseDate:     time.Date(2011, 3, 16, 0, 0, 0, 0, time.UTC),
		DurationMinutes: 123,
		Country:         "IR",
		Translations:    []string{"fa", "en"},
		Resolutions:     []string{"2K", "4K"},
	}
	if err := movies.Create(ctx, movie); err != nil {
		return 0, fmt.Errorf("movie: %w", err)
	}
	if err := movies.AddCategory(ctx, movie.ID, drama.ID); err != nil {
		return 0, fmt.Errorf("movie category: %w", err)
	}
	director := &model.Worker{Name: "Asghar Farhadi", Role: "director"}
	if err := movies.CreateWorker(ctx, director); err != nil {
		return 0, fmt.Errorf("worker: %w", err)
	}
	if err := movies.AddWorker(ctx, movie.ID, director.ID); err != nil {
		return 0, fmt.Errorf("movie worker: %w", err)
	}

	room := &model.Room{CinemaID: cinema.ID, Name: "R1"}
	if err := rooms.Create(ctx, room); err != nil {
		return 0, fmt.Errorf("room: %w", err)
	}
	normal := &model.RoomPriceTier{RoomID: room.ID, Name: "NORMAL", AdjustmentType: model.AdjustmentFixed, AdjustmentValue: 200}
	vip := &model.RoomPriceTier{RoomID: room.ID, Name: "VIP", AdjustmentType: model.AdjustmentPercentage, AdjustmentValue: 50}
	for _, t := range []*model.RoomPriceTier{normal, vip} {
		if err := rooms.CreateTier(ctx, t); err != nil {
			return 0, fmt.Errorf("tier %s: %w", t.Name, err)
		}
	}

	// rows A-E hold 10 seats each; row A is VIP
	var layout []model.Seat
	for _, row := range "ABCDE" {
		tier := normal.ID
		if row == 'A' {
			tier = vip.ID
		}
		for n := 1; n <= 10; n++ {
			layout = append(layout, model.Seat{RoomID: room.ID, Number: fmt.Sprintf("%c%d", row, n), PriceTierID: tier})
		}
	}
	if err := seats.CreateBulk(ctx, layout); err != nil {
		return 0, fmt.Errorf("seats: %w", err)
	}

	day := time.Now().UTC().Truncate(24 * time.Hour)
	count := 0
	for d := 1; d <= 7; d++ {
		s := &model.Screening{
			MovieID:     movie.ID,
			CinemaID:    cinema.ID,
			RoomID:      room.ID,
			DateTime:    day.AddDate(0, 0, d).Add(19 * time.Hour),
			BasePrice:   1000,
			Translation: "fa",
			Resolution:  "4K",
		}
		if err := shows.Create(ctx, s); err != nil {
			return count, fmt.Errorf("screening: %w", err)
		}
		count++
	}
	return count, nil
}
