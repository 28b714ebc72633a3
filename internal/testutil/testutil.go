package testutil

import (
	"context"
	"fmt"
	"strings"

	"figimapper/internal/figi"
	"figimapper/internal/openfigi"
)

// StubMapper is a func-field implementation of openfigi.Mapper for tests
type StubMapper struct {
	MapFunc func(ctx context.Context, jobs []figi.Job) ([]figi.JobResult, error)
}

// Map implements the Mapper interface
func (m *StubMapper) Map(ctx context.Context, jobs []figi.Job) ([]figi.JobResult, error) {
	if m.MapFunc != nil {
		return m.MapFunc(ctx, jobs)
	}
	return MatchAll(jobs), nil
}

// NewStubMapper returns a mapper that matches every job, or fails every call with err
func NewStubMapper(err error) openfigi.Mapper {
	return &StubMapper{
		MapFunc: func(_ context.Context, jobs []figi.Job) ([]figi.JobResult, error) {
			if err != nil {
				return nil, err
			}
			return MatchAll(jobs), nil
		},
	}
}

// RecordFor builds a deterministic record for an identifier value
func RecordFor(idValue string) figi.Record {
	return figi.Record{
		FIGI:          "BBG" + strings.ToUpper(idValue),
		Name:          "NAME " + idValue,
		Ticker:        "T" + idValue,
		ExchCode:      "US",
		CompositeFIGI: "BBGC" + idValue,
		SecurityType:  "Common Stock",
		MarketSector:  "Equity",
	}
}

// MatchAll answers every job with RecordFor its value
func MatchAll(jobs []figi.Job) []figi.JobResult {
	out := make([]figi.JobResult, len(jobs))
	for i, j := range jobs {
		out[i] = figi.JobResult{Data: []figi.Record{RecordFor(j.IDValue)}}
	}
	return out
}

// Identifiers returns n distinct identifier values
func Identifiers(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("US%010d", i)
	}
	return ids
}
