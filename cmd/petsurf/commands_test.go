package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/vidyasagar/petsurf/internal/storage"
)

func TestVisitsTable(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.Local)
	out := visitsTable([]storage.Visit{
		{TabID: 2, URL: "https://petition.president.gov.ua/petition/42?lvp=true", HistoryIndex: 0, Outcome: "cleared", VisitedAt: at},
		{TabID: 1, URL: "https://petition.president.gov.ua/petitions", HistoryIndex: 3, Outcome: "skipped", VisitedAt: at},
		{TabID: 1, URL: "https://petition.president.gov.ua/petition/7", VisitedAt: at},
	}).Render()

	for _, want := range []string{
		"WHEN", "OUTCOME", "PETITION",
		"2026-03-01 12:00",
		"cleared", "skipped",
		"https://petition.president.gov.ua/petition/42?lvp=true",
		"42", "7",
	} {
		assert.Contains(t, out, want)
	}
}

func TestVisitsTableEmpty(t *testing.T) {
	out := visitsTable(nil).Render()
	assert.Contains(t, out, "URL")
	assert.NotContains(t, out, "petition.president.gov.ua")
}
