// Package currency converts between US dollars and the villa's local
// currency using a single exchange rate that is refreshed in the background.
//
// Readers always get the last cached rate. A failed refresh keeps the previous
// rate and is only logged; bookings never wait on the rate source.
package currency

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/Shivanand-hulikatti/villa-booking/internal/model"
)

// USD is the reference currency of unit price tables.
const USD = "USD"

// Source fetches the current number of local units per 1 USD.
type Source interface {
	FetchRate(ctx context.Context) (float64, error)
}

// Cache persists the last good rate across restarts.
type Cache interface {
	LoadRate(ctx context.Context) (float64, error)
	StoreRate(ctx context.Context, rate float64) error
}

// Observer is notified of rate changes and refresh failures.
type Observer interface {
	SetExchangeRate(rate float64)
	RateRefreshFailed()
}

// Converter holds the current USD to local rate.
type Converter struct {
	local    string
	source   Source
	cache    Cache
	observer Observer

	mu        sync.RWMutex
	rate      float64
	updatedAt time.Time
}

// Option configures a Converter.
type Option func(*Converter)

// WithSource sets the rate source used by Refresh.
func WithSource(s Source) Option { return func(c *Converter) { c.source = s } }

// WithCache sets where the last good rate is persisted.
func WithCache(cache Cache) Option { return func(c *Converter) { c.cache = cache } }

// WithObserver reports rate updates and failures, usually to metrics.
func WithObserver(o Observer) Option { return func(c *Converter) { c.observer = o } }

// NewConverter returns a Converter for the given local currency starting at
// defaultRate.
func NewConverter(local string, defaultRate float64, opts ...Option) *Converter {
	c := &Converter{local: strings.ToUpper(local), rate: defaultRate}
	for _, opt := range opts {
		opt(c)
	}
	if c.observer != nil {
		c.observer.SetExchangeRate(defaultRate)
	}
	return c
}

// LocalCurrency is the ISO code of the local currency.
func (c *Converter) LocalCurrency() string { return c.local }

// Rate returns the cached number of local units per 1 USD.
func (c *Converter) Rate() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.rate
}

// UpdatedAt is when the rate last changed, zero while on the default.
func (c *Converter) UpdatedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.updatedAt
}

// Convert converts amount between USD and the local currency. Equal
// currencies return amount unchanged; any other pair fails.
func (c *Converter) Convert(amount float64, from, to string) (float64, error) {
	from, to = strings.ToUpper(from), strings.ToUpper(to)
	if from == to {
		return amount, nil
	}
	rate := c.Rate()
	switch {
	case from == USD && to == c.local:
		return amount * rate, nil
	case from == c.local && to == USD:
		return amount / rate, nil
	}
	return 0, &model.CurrencyPairError{From: from, To: to}
}

func (c *Converter) set(rate float64) {
	c.mu.Lock()
	c.rate = rate
	c.updatedAt = time.Now().UTC()
	c.mu.Unlock()
	if c.observer != nil {
		c.observer.SetExchangeRate(rate)
	}
}

// Warm restores the last persisted rate, if any.
func (c *Converter) Warm(ctx context.Context) {
	if c.cache == nil {
		return
	}
	rate, err := c.cache.LoadRate(ctx)
	if err != nil {
		log.Printf("[currency] no cached rate, using %.4f %s/USD: %v", c.Rate(), c.local, err)
		return
	}
	if rate > 0 {
		c.set(rate)
		log.Printf("[currency] restored cached rate %.4f %s/USD", rate, c.local)
	}
}

// Refresh fetches a new rate. On failure the current rate is kept and the
// error is logged and returned.
func (c *Converter) Refresh(ctx context.Context) error {
	if c.source == nil {
		return errors.New("currency: no rate source configured")
	}
	rate, err := c.source.FetchRate(ctx)
	if err == nil && rate <= 0 {
		err = fmt.Errorf("currency: source returned non-positive rate %v", rate)
	}
	if err != nil {
		if c.observer != nil {
			c.observer.RateRefreshFailed()
		}
		log.Printf("[currency] refresh failed, keeping %.4f %s/USD: %v", c.Rate(), c.local, err)
		return err
	}
	c.set(rate)
	if c.cache != nil {
		if err := c.cache.StoreRate(ctx, rate); err != nil {
			log.Printf("[currency] cache store failed: %v", err)
		}
	}
	return nil
}

// Run refreshes immediately and then every interval until ctx is done.
func (c *Converter) Run(ctx context.Context, interval time.Duration) {
	_ = c.Refresh(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = c.Refresh(ctx)
		}
	}
}
