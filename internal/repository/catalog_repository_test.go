package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinema-booking/internal/database/dbtest"
	"github.com/iliyamo/cinema-booking/internal/model"
	"github.com/iliyamo/cinema-booking/internal/repository"
)

func TestCatalogRepos_CreateAndRead(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()

	cinemas := repository.NewCinemaRepo(db)
	city := &model.City{Name: "Shiraz"}
	require.NoError(t, cinemas.CreateCity(ctx, city))
	cinema := &model.Cinema{CityID: city.ID, Name: "Hafez", LocationLat: 29.6, LocationLon: 52.5}
	require.NoError(t, cinemas.Create(ctx, cinema))
	gotCinema, err := cinemas.GetByID(ctx, cinema.ID)
	require.NoError(t, err)
	assert.Equal(t, *cinema, *gotCinema)

	rooms := repository.NewRoomRepo(db)
	room := &model.Room{CinemaID: cinema.ID, Name: "R1"}
	require.NoError(t, rooms.Create(ctx, room))
	assert.Error(t, rooms.Create(ctx, &model.Room{CinemaID: cinema.ID, Name: "R1"}), "room names are unique per cinema")

	tier := &model.RoomPriceTier{RoomID: room.ID, Name: "VIP", AdjustmentType: model.AdjustmentPercentage, AdjustmentValue: 50}
	require.NoError(t, rooms.CreateTier(ctx, tier))
	gotTier, err := rooms.GetTier(ctx, tier.ID)
	require.NoError(t, err)
	assert.Equal(t, *tier, *gotTier)

	seats := repository.NewSeatRepo(db)
	require.NoError(t, seats.CreateBulk(ctx, []model.Seat{
		{RoomID: room.ID, Number: "A1", PriceTierID: tier.ID},
		{RoomID: room.ID, Number: "A2", PriceTierID: tier.ID},
	}))
	list, err := seats.ListByRoom(ctx, room.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "A1", list[0].Number)
	n, err := seats.CountByRoom(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	movies := repository.NewMovieRepo(db)
	movie := &model.Movie{
		Name: "Leila's Brothers", Slug: "leilas-brothers",
		ReleaseDate:  time.Date(2022, 5, 25, 0, 0, 0, 0, time.UTC),
		Translations: []string{"original", "dubbed"}, Resolutions: []string{"2D"},
	}
	require.NoError(t, movies.Create(ctx, movie))
	gotMovie, err := movies.GetByID(ctx, movie.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"original", "dubbed"}, gotMovie.Translations)
	assert.Equal(t, []string{"2D"}, gotMovie.Resolutions)

	worker := &model.Worker{Name: "Saeed Roustayi", Role: "director"}
	require.NoError(t, movies.CreateWorker(ctx, worker))
	require.NoError(t, movies.AddWorker(ctx, movie.ID, worker.ID))
	workers, err := movies.ListWorkers(ctx, movie.ID)
	require.NoError(t, err)
	assert.Equal(t, []model.Worker{*worker}, workers)

	categories := repository.NewCategoryRepo(db)
	drama := &model.Category{Name: "Drama"}
	require.NoError(t, categories.Create(ctx, drama))
	family := &model.Category{Name: "Family drama", ParentID: &drama.ID}
	require.NoError(t, categories.Create(ctx, family))
	require.NoError(t, movies.AddCategory(ctx, movie.ID, family.ID))
	ids, err := movies.CategoryIDs(ctx, movie.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint64{family.ID}, ids)
	all, err := categories.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Nil(t, all[0].ParentID)
	require.NotNil(t, all[1].ParentID)
	assert.Equal(t, drama.ID, *all[1].ParentID)

	screenings := repository.NewScreeningRepo(db)
	at := time.Date(2026, 3, 1, 18, 30, 0, 0, time.UTC)
	sc := &model.Screening{MovieID: movie.ID, CinemaID: cinema.ID, RoomID: room.ID, DateTime: at, BasePrice: 1000, Translation: "original", Resolution: "2D"}
	require.NoError(t, screenings.Create(ctx, sc))
	gotSc, err := screenings.GetByID(ctx, sc.ID)
	require.NoError(t, err)
	assert.True(t, at.Equal(gotSc.DateTime))
	assert.Equal(t, int64(1000), gotSc.BasePrice)

	_, err = screenings.GetByID(ctx, sc.ID+100)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestScreeningRepo_SearchWindow(t *testing.T) {
	db, fx := seedRoom(t)
	ctx := context.Background()
	base := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	inWindow := dbtest.AddScreening(t, db, fx, base.Add(time.Hour), 900)
	dbtest.AddScreening(t, db, fx, base.Add(48*time.Hour), 900)

	book(t, db, fx, "u", "A1") // default screening, outside the window

	repo := repository.NewBookingRepo(db, db.Dialect)
	b := &model.Booking{Reference: "ref-window", UserRef: "u", ScreeningID: inWindow}
	require.NoError(t, repo.Create(ctx, b))
	require.NoError(t, repo.CreateSeatsBulk(ctx, []model.SeatBooking{
		{BookingID: b.ID, ScreeningID: inWindow, SeatID: fx.Seats["A2"]},
		{BookingID: b.ID, ScreeningID: inWindow, SeatID: fx.Seats["A3"]},
	}))

	rows, err := repository.NewScreeningRepo(db).SearchWindow(ctx, base, base.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, inWindow, rows[0].ScreeningID)
	assert.Equal(t, "R1", rows[0].RoomName)
	assert.Equal(t, 3, rows[0].TotalSeats)
	assert.Equal(t, 2, rows[0].BookedSeats)
	assert.Equal(t, int64(900), rows[0].BasePrice)
}
