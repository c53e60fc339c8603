package versionstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vellum-engine/vellum/runtime/reflection"
)

type Vec struct {
	X float32
	Y float32
	Z float32
}

type Tint int32

const (
	TintNone Tint = iota
	TintWarm
	TintCold
)

var recordedAt = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

// newRegistry registers Vec with the given fields (a subset of x, y, z) and,
// when withTint is set, the Tint enum.
func newRegistry(t *testing.T, fields string, withTint bool) *reflection.Registry {
	t.Helper()
	reg := reflection.NewRegistry()

	b := reflection.Define[Vec](reg)
	for _, f := range fields {
		switch f {
		case 'x':
			b.Var("x", reflection.Field(func(v *Vec) *float32 { return &v.X }))
		case 'y':
			b.Var("y", reflection.Field(func(v *Vec) *float32 { return &v.Y }))
		case 'z':
			b.Var("z", reflection.Field(func(v *Vec) *float32 { return &v.Z }))
		default:
			t.Fatalf("unknown field %q", f)
		}
	}
	b.Finish()

	if withTint {
		reflection.DefineEnum[Tint](reg).
			Entry("none", TintNone).
			Entry("warm", TintWarm).
			Entry("cold", TintCold).
			Finish()
	}
	return reg
}

func sampleRecords() []Record {
	return []Record{
		{Name: "game.Player", Kind: KindType, Version: "00000000000000ff", UserVersion: 2, RecordedAt: recordedAt},
		{Name: "game.Tint", Kind: KindEnum, Version: "fedcba9876543210", RecordedAt: recordedAt},
		{Name: "game.Actor", Kind: KindType, Version: "0123456789abcdef", RecordedAt: recordedAt},
	}
}

func requireRecord(t *testing.T, want, got Record) {
	t.Helper()
	require.Equal(t, want.Name, got.Name)
	require.Equal(t, want.Kind, got.Kind)
	require.Equal(t, want.Version, got.Version)
	require.Equal(t, want.UserVersion, got.UserVersion)
	require.True(t, want.RecordedAt.Equal(got.RecordedAt), "recorded_at %v != %v", want.RecordedAt, got.RecordedAt)
}
