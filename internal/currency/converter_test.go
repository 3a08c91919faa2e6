package currency

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Shivanand-hulikatti/villa-booking/internal/model"
)

type stubSource struct {
	rate float64
	err  error
}

func (s *stubSource) FetchRate(context.Context) (float64, error) { return s.rate, s.err }

type memCache struct {
	rate   float64
	stored []float64
}

func (m *memCache) LoadRate(context.Context) (float64, error) {
	if m.rate == 0 {
		return 0, errors.New("miss")
	}
	return m.rate, nil
}

func (m *memCache) StoreRate(_ context.Context, rate float64) error {
	m.stored = append(m.stored, rate)
	return nil
}

type countingObserver struct {
	last     float64
	failures int
}

func (o *countingObserver) SetExchangeRate(r float64) { o.last = r }
func (o *countingObserver) RateRefreshFailed() { o.failures++ }

func TestConvert(t *testing.T) {
	c := NewConverter("ars", 1000)

	t.Run("same currency is a no-op", func(t *testing.T) {
		got, err := c.Convert(123.45, "EUR", "eur")
		if err != nil || got != 123.45 {
			t.Fatalf("got %v, %v", got, err)
		}
	})

	t.Run("usd to local", func(t *testing.T) {
		got, err := c.Convert(2, "USD", "ARS")
		if err != nil || got != 2000 {
			t.Fatalf("got %v, %v", got, err)
		}
	})

	t.Run("local to usd", func(t *testing.T) {
		got, err := c.Convert(5000, "ARS", "USD")
		if err != nil || got != 5 {
			t.Fatalf("got %v, %v", got, err)
		}
	})

	t.Run("unsupported pair", func(t *testing.T) {
		_, err := c.Convert(1, "USD", "EUR")
		if !errors.Is(err, model.ErrUnsupportedCurrencyPair) {
			t.Fatalf("expected ErrUnsupportedCurrencyPair, got %v", err)
		}
		var pe *model.CurrencyPairError
		if !errors.As(err, &pe) || pe.From != "USD" || pe.To != "EUR" {
			t.Errorf("unexpected payload %+v", pe)
		}
	})
}

func TestRefresh_KeepsRateOnFailure(t *testing.T) {
	src := &stubSource{rate: 1200}
	cache := &memCache{}
	obs := &countingObserver{}
	c := NewConverter("ARS", 1000, WithSource(src), WithCache(cache), WithObserver(obs))

	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if c.Rate() != 1200 || obs.last != 1200 {
		t.Fatalf("rate = %v, observer = %v", c.Rate(), obs.last)
	}
	if len(cache.stored) != 1 || cache.stored[0] != 1200 {
		t.Errorf("cache stored %v", cache.stored)
	}

	src.err = errors.New("upstream down")
	if err := c.Refresh(context.Background()); err == nil {
		t.Fatal("expected refresh error")
	}
	if c.Rate() != 1200 {
		t.Errorf("rate changed to %v after failed refresh", c.Rate())
	}

	src.err, src.rate = nil, -3
	_ = c.Refresh(context.Background())
	if c.Rate() != 1200 {
		t.Errorf("non-positive rate accepted: %v", c.Rate())
	}
	if obs.failures != 2 {
		t.Errorf("failures = %d, want 2", obs.failures)
	}
}

func TestWarm_RestoresCachedRate(t *testing.T) {
	c := NewConverter("ARS", 1000, WithCache(&memCache{rate: 1350}))
	c.Warm(context.Background())
	if c.Rate() != 1350 {
		t.Errorf("rate = %v, want 1350", c.Rate())
	}

	empty := NewConverter("ARS", 1000, WithCache(&memCache{}))
	empty.Warm(context.Background())
	if empty.Rate() != 1000 {
		t.Errorf("rate = %v, want default 1000", empty.Rate())
	}
}

func TestHTTPSource(t *testing.T) {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/latest/USD", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"result": "success",
			"rates":  map[string]float64{"USD": 1, "ARS": 987.5},
		})
	})
	mux.HandleFunc("/broken", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	t.Run("ok", func(t *testing.T) {
		rate, err := NewHTTPSource(server.URL+"/latest/USD", "ars").FetchRate(context.Background())
		if err != nil || rate != 987.5 {
			t.Fatalf("got %v, %v", rate, err)
		}
	})

	t.Run("missing currency", func(t *testing.T) {
		if _, err := NewHTTPSource(server.URL+"/latest/USD", "CLP").FetchRate(context.Background()); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("bad status", func(t *testing.T) {
		if _, err := NewHTTPSource(server.URL+"/broken", "ARS").FetchRate(context.Background()); err == nil {
			t.Fatal("expected error")
		}
	})
}
