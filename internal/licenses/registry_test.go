package licenses

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/cnxpopulate/pkg/cnx"
)

const byURL = "http://creativecommons.org/licenses/by/1.0"

func countingSource(calls *int32, list ...cnx.License) cnx.LicenseSource {
	return cnx.LicenseSourceFunc(func(ctx context.Context) ([]cnx.License, error) {
		atomic.AddInt32(calls, 1)
		return list, nil
	})
}

func TestRegistry_RetrieveByURL(t *testing.T) {
	r := NewRegistry(NewFileSource("testdata/licenses.json"))
	ctx := context.Background()

	license, found, err := r.RetrieveByURL(ctx, byURL)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, int64(1), license.ID)
	assert.Equal(t, "by", license.Code)
	assert.Equal(t, "1.0", license.Version)

	license, found, err = r.RetrieveByURL(ctx, "http://example.com/not-a-license")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, license)
}

func TestRegistry_SharedPointers(t *testing.T) {
	r := NewRegistry(NewFileSource("testdata/licenses.json"))
	ctx := context.Background()

	a, _, err := r.RetrieveByURL(ctx, byURL)
	require.NoError(t, err)
	b, _, err := r.RetrieveByURL(ctx, byURL)
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.Same(t, a, r.Licenses()[0])
}

func TestRegistry_ExactMatchOnly(t *testing.T) {
	r := NewStaticRegistry(cnx.License{ID: 2, URL: "http://creativecommons.org/licenses/by/2.0/"})

	_, found, err := r.RetrieveByURL(context.Background(), "http://creativecommons.org/licenses/by/2.0")
	require.NoError(t, err)
	assert.False(t, found, "trailing slash must matter")
}

func TestRegistry_FirstMatchWins(t *testing.T) {
	r := NewRegistry(NewFileSource("testdata/duplicate-url.json"))

	license, found, err := r.RetrieveByURL(context.Background(), byURL)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "first", license.Name)
}

func TestRegistry_PopulatesOnce(t *testing.T) {
	var calls int32
	r := NewRegistry(countingSource(&calls, cnx.License{ID: 1, URL: byURL}))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, found, err := r.RetrieveByURL(context.Background(), byURL)
			assert.NoError(t, err)
			assert.True(t, found)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	require.NoError(t, r.Populate(context.Background()))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestRegistry_FailedPopulationCachesNothing(t *testing.T) {
	boom := errors.New("archive unavailable")
	fail := true
	r := NewRegistry(cnx.LicenseSourceFunc(func(ctx context.Context) ([]cnx.License, error) {
		if fail {
			return []cnx.License{{ID: 9, URL: "partial"}}, boom
		}
		return []cnx.License{{ID: 1, URL: byURL}}, nil
	}))

	_, _, err := r.RetrieveByURL(context.Background(), "partial")
	require.ErrorIs(t, err, boom)
	assert.False(t, r.IsPopulated())
	assert.Empty(t, r.Licenses())

	fail = false
	license, found, err := r.RetrieveByURL(context.Background(), byURL)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, int64(1), license.ID)
}

func TestRegistry_NilSource(t *testing.T) {
	r := NewRegistry(nil)

	_, found, err := r.RetrieveByURL(context.Background(), byURL)
	require.NoError(t, err)
	assert.False(t, found)
	assert.True(t, r.IsPopulated())
	assert.Empty(t, r.Licenses())
}

func TestNewStaticRegistry_CopiesInput(t *testing.T) {
	input := []cnx.License{{ID: 1, Code: "by", URL: byURL}}
	r := NewStaticRegistry(input...)
	input[0].Code = "changed"

	license, found, err := r.RetrieveByURL(context.Background(), byURL)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "by", license.Code)
}
