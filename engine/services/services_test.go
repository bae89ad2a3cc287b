package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeService struct {
	name     string
	log      *[]string
	initErr  error
	closeErr error
	width    int
	running  bool
}

func (f *fakeService) Name() string { return f.name }

func (f *fakeService) Init() error {
	*f.log = append(*f.log, "init "+f.name)
	return f.initErr
}

func (f *fakeService) Shutdown() error {
	*f.log = append(*f.log, "shutdown "+f.name)
	return f.closeErr
}

type fakeDisplay struct{ fakeService }

func (d *fakeDisplay) Width() int      { return d.width }
func (d *fakeDisplay) Height() int     { return d.width / 2 }
func (d *fakeDisplay) IsRunning() bool { return d.running }

func TestRegistryOrder(t *testing.T) {
	var log []string
	r := NewRegistry(
		&fakeService{name: "a", log: &log},
		&fakeService{name: "b", log: &log},
		&fakeService{name: "c", log: &log},
	)
	require.NoError(t, r.Init())
	require.NoError(t, r.Shutdown())
	assert.Equal(t, []string{"init a", "init b", "init c", "shutdown c", "shutdown b", "shutdown a"}, log)

	log = nil
	require.NoError(t, r.Shutdown())
	assert.Empty(t, log, "nothing left to stop")
}

func TestRegistryInitFailureRollsBack(t *testing.T) {
	var log []string
	boom := errors.New("no device")
	r := NewRegistry(
		&fakeService{name: "a", log: &log},
		&fakeService{name: "b", log: &log, initErr: boom},
		&fakeService{name: "c", log: &log},
	)
	err := r.Init()
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "init b")
	assert.Equal(t, []string{"init a", "init b", "shutdown a"}, log)
}

func TestRegistryShutdownContinuesPastErrors(t *testing.T) {
	var log []string
	boom := errors.New("stuck")
	r := NewRegistry(
		&fakeService{name: "a", log: &log},
		&fakeService{name: "b", log: &log, closeErr: boom},
	)
	require.NoError(t, r.Init())
	err := r.Shutdown()
	require.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"init a", "init b", "shutdown b", "shutdown a"}, log)
}

func TestRegistryLookups(t *testing.T) {
	var log []string
	r := NewRegistry(&fakeService{name: "x", log: &log})
	assert.IsType(t, NopAudio{}, r.Audio())
	_, ok := r.Display()
	assert.False(t, ok)

	d := &fakeDisplay{fakeService{name: "win", log: &log, width: 640, running: true}}
	r.Register(d)
	got, ok := r.Display()
	require.True(t, ok)
	assert.Equal(t, 640, got.Width())
	assert.Equal(t, 320, got.Height())
	assert.True(t, got.IsRunning())
}

func TestRegisterAfterInitPanics(t *testing.T) {
	var log []string
	r := NewRegistry(&fakeService{name: "a", log: &log})
	require.NoError(t, r.Init())
	assert.Panics(t, func() { r.Register(&fakeService{name: "late", log: &log}) })
	assert.Panics(t, func() { NewRegistry(nil) })
}

func TestNopAudio(t *testing.T) {
	var a Audio = NopAudio{}
	assert.NoError(t, a.Init())
	assert.NoError(t, a.Play("boom"))
	assert.NoError(t, a.Shutdown())
}
