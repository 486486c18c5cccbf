package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorage_SetGet(t *testing.T) {
	s := NewStorage(time.Minute)
	defer s.Close()

	require.NoError(t, s.Set("rl:10.0.0.1", []byte("3"), time.Minute))
	got, err := s.Get("rl:10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, []byte("3"), got)

	missing, err := s.Get("rl:otra")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestStorage_ClavesVencen(t *testing.T) {
	s := NewStorage(50 * time.Millisecond)
	defer s.Close()

	require.NoError(t, s.Set("corta", []byte("1"), time.Second))
	require.NoError(t, s.Set("larga", []byte("1"), time.Hour))

	assert.Eventually(t, func() bool {
		v, err := s.Get("corta")
		return err == nil && v == nil
	}, 4*time.Second, 50*time.Millisecond)

	v, err := s.Get("larga")
	require.NoError(t, err)
	assert.NotNil(t, v)
}

func TestStorage_DeleteReset(t *testing.T) {
	s := NewStorage(0)
	defer s.Close()

	require.NoError(t, s.Set("a", []byte("1"), 0))
	require.NoError(t, s.Set("b", []byte("1"), 0))
	require.NoError(t, s.Delete("a"))
	v, _ := s.Get("a")
	assert.Nil(t, v)

	require.NoError(t, s.Reset())
	v, _ = s.Get("b")
	assert.Nil(t, v)
}

func TestStorage_IgnoraClaveOValorVacio(t *testing.T) {
	s := NewStorage(time.Minute)
	defer s.Close()

	require.NoError(t, s.Set("", []byte("1"), time.Minute))
	require.NoError(t, s.Set("k", nil, time.Minute))
	v, _ := s.Get("k")
	assert.Nil(t, v)
}
