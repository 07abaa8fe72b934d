package adapters

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"immoscope/internal/logging"
	"immoscope/internal/market"
)

func testLogger(t *testing.T) *logging.AppLogger {
	t.Helper()
	logger, _ := logging.NewTestLogger()
	return logger
}

func TestGeocodeLocate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "lyon 6e" {
			t.Errorf("expected query 'lyon 6e', got %q", got)
		}
		fmt.Fprint(w, `{"features":[{"geometry":{"coordinates":[4.8357,45.764]},"properties":{"citycode":"69386","label":"Lyon 6e Arrondissement"}}]}`)
	}))
	defer server.Close()

	client := NewGeocodeClient(server.URL, time.Second, testLogger(t))
	point, err := client.Locate(context.Background(), "lyon 6e")
	if err != nil {
		t.Fatalf("Locate failed: %v", err)
	}

	if point == nil {
		t.Fatal("expected a geocoding result")
	}
	if point.Lat != 45.764 || point.Lon != 4.8357 {
		t.Errorf("unexpected coordinates: %+v", point)
	}
	if point.CityCode != "69386" {
		t.Errorf("expected citycode 69386, got %s", point.CityCode)
	}
}

func TestGeocodeNoMatchIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"features":[]}`)
	}))
	defer server.Close()

	client := NewGeocodeClient(server.URL, time.Second, testLogger(t))
	point, err := client.Locate(context.Background(), "nowhere")
	if err != nil {
		t.Fatalf("expected no error for empty result, got %v", err)
	}
	if point != nil {
		t.Errorf("expected nil point for empty result, got %+v", point)
	}
}

func TestGeocodeServerErrorIsSourceUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewGeocodeClient(server.URL, time.Second, testLogger(t))
	_, err := client.Locate(context.Background(), "lyon")
	if !errors.Is(err, market.ErrSourceUnavailable) {
		t.Errorf("expected ErrSourceUnavailable, got %v", err)
	}
}

func TestDVFTransactionsWindowFiltering(t *testing.T) {
	now := time.Now()
	recent := now.AddDate(0, -3, 0).Format("2006-01-02")
	stale := now.AddDate(-2, 0, 0).Format("2006-01-02")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("dist"); got != "2000" {
			t.Errorf("expected dist=2000, got %q", got)
		}
		fmt.Fprintf(w, `{"features":[
			{"properties":{"date_mutation":"%s","valeur_fonciere":275000,"surface_reelle_bati":50}},
			{"properties":{"date_mutation":"%s","valeur_fonciere":300000,"surface_reelle_bati":60}},
			{"properties":{"date_mutation":"%s","valeur_fonciere":0,"surface_reelle_bati":55}}
		]}`, recent, stale, recent)
	}))
	defer server.Close()

	client := NewDVFClient(server.URL, time.Second, testLogger(t))
	records, err := client.Transactions(context.Background(), 45.764, 4.8357, 12)
	if err != nil {
		t.Fatalf("Transactions failed: %v", err)
	}

	// Only the recent record with a usable price and surface survives.
	if len(records) != 1 {
		t.Fatalf("expected 1 record in window, got %d", len(records))
	}
	if records[0].PricePerSqm != 5500 {
		t.Errorf("expected 5500 €/m², got %f", records[0].PricePerSqm)
	}
}

func TestDVFEmptyResultIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"features":[]}`)
	}))
	defer server.Close()

	client := NewDVFClient(server.URL, time.Second, testLogger(t))
	records, err := client.Transactions(context.Background(), 45.764, 4.8357, 12)
	if err != nil {
		t.Fatalf("expected no error for empty result, got %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected no records, got %d", len(records))
	}
}

func TestDVFTimeoutIsSourceUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	client := NewDVFClient(server.URL, 20*time.Millisecond, testLogger(t))
	_, err := client.Transactions(context.Background(), 45.764, 4.8357, 12)
	if !errors.Is(err, market.ErrSourceUnavailable) {
		t.Errorf("expected ErrSourceUnavailable on timeout, got %v", err)
	}
}

func TestINSEEHouseholdIncome(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("commune"); got != "69386" {
			t.Errorf("expected commune 69386, got %q", got)
		}
		fmt.Fprint(w, `{"Obs":[{"OBS_VALUE":28000},{"OBS_VALUE":31000}]}`)
	}))
	defer server.Close()

	client := NewINSEEClient(server.URL, time.Second, testLogger(t))
	stats, err := client.HouseholdIncome(context.Background(), "69386")
	if err != nil {
		t.Fatalf("HouseholdIncome failed: %v", err)
	}

	if stats == nil {
		t.Fatal("expected income stats")
	}
	if stats.MedianAnnualIncome != 31000 {
		t.Errorf("expected latest observation 31000, got %f", stats.MedianAnnualIncome)
	}
}

func TestINSEENoObservationsIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"Obs":[]}`)
	}))
	defer server.Close()

	client := NewINSEEClient(server.URL, time.Second, testLogger(t))
	stats, err := client.HouseholdIncome(context.Background(), "99999")
	if err != nil {
		t.Fatalf("expected no error for empty series, got %v", err)
	}
	if stats != nil {
		t.Errorf("expected nil stats, got %+v", stats)
	}
}
