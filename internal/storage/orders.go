package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"log/slog"

	"github.com/pulsedelivery/orderbot/internal/logger"
	"github.com/pulsedelivery/orderbot/internal/order"
)

// OrderRepo archives submitted orders.
type OrderRepo struct {
	db *sqlx.DB
}

// NewOrderRepo wraps the shared connection pool.
func NewOrderRepo(db *sqlx.DB) *OrderRepo {
	return &OrderRepo{db: db}
}

type orderRow struct {
	ID              string         `db:"id"`
	CustomerID      int64          `db:"customer_id"`
	Name            string         `db:"name"`
	Phone           string         `db:"phone"`
	Items           pq.StringArray `db:"items"`
	Photos          pq.StringArray `db:"photos"`
	Mode            string         `db:"mode"`
	PickupAddress   string         `db:"pickup_address"`
	DeliveryAddress string         `db:"delivery_address"`
	Lat             *float64       `db:"lat"`
	Lon             *float64       `db:"lon"`
	TimeASAP        bool           `db:"time_asap"`
	TimeCustom      string         `db:"time_custom"`
	Payment         string         `db:"payment"`
	ChangeFrom      string         `db:"change_from"`
	PromoCode       string         `db:"promo_code"`
	CreatedAt       time.Time      `db:"created_at"`
}

// Save archives one submitted order.
func (r *OrderRepo) Save(ctx context.Context, o *order.Order) error {
	row := orderRow{
		ID:              o.ID,
		CustomerID:      o.CustomerID,
		Name:            o.Name,
		Phone:           o.Phone,
		Items:           pq.StringArray(o.Items),
		Photos:          pq.StringArray(o.Photos),
		Mode:            string(o.Mode),
		PickupAddress:   o.PickupAddress,
		DeliveryAddress: o.DeliveryAddress,
		TimeASAP:        o.Time.ASAP,
		TimeCustom:      o.Time.Custom,
		Payment:         string(o.Payment),
		ChangeFrom:      o.ChangeFrom,
		PromoCode:       o.PromoCode,
		CreatedAt:       o.CreatedAt,
	}
	if o.Location != nil {
		row.Lat = &o.Location.Lat
		row.Lon = &o.Location.Lon
	}

	start := time.Now()
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO orders (
			id, customer_id, name, phone, items, photos, mode,
			pickup_address, delivery_address, lat, lon,
			time_asap, time_custom, payment, change_from, promo_code, created_at
		) VALUES (
			:id, :customer_id, :name, :phone, :items, :photos, :mode,
			:pickup_address, :delivery_address, :lat, :lon,
			:time_asap, :time_custom, :payment, :change_from, :promo_code, :created_at
		)`, row)
	if err != nil {
		logger.DB.Error("order save failed",
			slog.String("event", "db.orders.save"),
			slog.String("order_id", o.ID),
			slog.String("err", err.Error()),
		)
		return fmt.Errorf("save order %s: %w", o.ID, err)
	}
	logger.DB.Debug("order saved",
		slog.String("event", "db.orders.save"),
		slog.String("order_id", o.ID),
		slog.Duration("duration", logger.RoundMS(time.Since(start))),
	)
	return nil
}
