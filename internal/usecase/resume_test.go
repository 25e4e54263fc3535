package usecase

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"caselaw/internal/adapter/memstore"
	"caselaw/internal/domain"
)

func TestResumer_SkipsStoredIDs(t *testing.T) {
	logs := captureLogs(t)
	ctx := context.Background()
	st := memstore.NewMemoryStore()
	require.NoError(t, st.PutBatch(ctx, []domain.Record{{ID: 2, Case: domain.Case{CaseName: "x"}}}))

	r := NewResumer(st, nil)
	var got []bool
	for i := 0; i < 3; i++ {
		id, exists, err := r.Next(ctx)
		require.NoError(t, err)
		assert.Equal(t, uint32(i+1), id)
		got = append(got, exists)
	}
	assert.Equal(t, []bool{false, true, false}, got)
	assert.Equal(t, 1, r.Skipped())
	assert.Equal(t, 1, strings.Count(logs.String(), "skipping existing record"))
	assert.Contains(t, logs.String(), "id=2")
}

func TestResumer_Overflow(t *testing.T) {
	r := NewResumer(memstore.NewMemoryStore(), nil)
	r.last = math.MaxUint32 - 1

	id, _, err := r.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint32(math.MaxUint32), id)

	_, _, err = r.Next(context.Background())
	assert.ErrorIs(t, err, ErrIDSpaceExhausted)
}
