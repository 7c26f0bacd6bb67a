package refdata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"bondcheck/internal/models"
)

func TestFetchParsesEmitterCSV(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Issuer,EMITTER_ID\nGazprom Capital, 1234 \nMissing ID,\n,5678\n"))
	}))
	defer server.Close()

	dir, err := Fetch(context.Background(), server.URL, zerolog.Nop())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(dir) != 1 {
		t.Fatalf("directory = %v, rows without both fields must be dropped", dir)
	}
	if dir["1234"] != "Gazprom Capital" {
		t.Errorf("dir[1234] = %q", dir["1234"])
	}
}

func TestFetchNon200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	if _, err := Fetch(context.Background(), server.URL, zerolog.Nop()); err == nil {
		t.Fatal("expected error")
	}
}

func TestAnnotate(t *testing.T) {
	dir := EmitterDirectory{"1234": "Gazprom Capital"}
	records := []models.SecurityRecord{
		{ISIN: "A", EmitterID: "1234"},
		{ISIN: "B", EmitterID: "9999"},
		{ISIN: "C"},
	}

	dir.Annotate(records)

	if records[0].Issuer != "Gazprom Capital" {
		t.Errorf("records[0].Issuer = %q", records[0].Issuer)
	}
	if records[1].Issuer != "" || records[2].Issuer != "" {
		t.Errorf("unknown emitters must stay unannotated: %q / %q", records[1].Issuer, records[2].Issuer)
	}
}
