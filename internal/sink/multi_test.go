package sink

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/olistclean/internal/core"
)

func TestNewMulti_SingleSinkUnwrapped(t *testing.T) {
	mem := core.NewMemorySink()
	assert.Same(t, mem, NewMulti(mem))
}

func TestMulti_WritesEverySink(t *testing.T) {
	a, b := core.NewMemorySink(), core.NewMemorySink()
	m := NewMulti(a, b)
	ctx := context.Background()

	require.NoError(t, m.Prepare(ctx))
	require.NoError(t, m.Write(ctx, sampleTable()))

	assert.Equal(t, []string{"O1", "O2"}, a.Column("order_item", "order_id"))
	assert.Equal(t, []string{"20.00", "10.00"}, b.Column("order_item", "price"))
}

func TestMulti_PropagatesErrors(t *testing.T) {
	ok := core.NewMemorySink()
	bad := core.NewMemorySink()
	bad.PrepareErr = errors.New("bucket unreachable")
	bad.WriteErrs = map[string]error{"order_item": errors.New("disk full")}

	m := NewMulti(ok, bad)
	ctx := context.Background()

	assert.EqualError(t, m.Prepare(ctx), "bucket unreachable")
	assert.EqualError(t, m.Write(ctx, sampleTable()), "disk full")
}
