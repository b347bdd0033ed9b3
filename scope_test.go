package lumen

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type orderedDestroyer struct {
	name  string
	order *[]string
}

func (d *orderedDestroyer) Destroy() {
	*d.order = append(*d.order, d.name)
}

func TestScopeReleasesInReverseOrder(t *testing.T) {
	var order []string
	scope := NewScope()

	require.NoError(t, scope.Attach("ctxt", &orderedDestroyer{"ctxt", &order}))
	require.NoError(t, scope.Attach("buf", &orderedDestroyer{"buf", &order}))
	require.NoError(t, scope.Attach("task", &orderedDestroyer{"task", &order}))
	require.Equal(t, 3, scope.Len())

	scope.Release()

	require.Equal(t, []string{"task", "buf", "ctxt"}, order)
	require.Equal(t, 0, scope.Len())
}

func TestScopeRejectsDuplicateNames(t *testing.T) {
	var order []string
	scope := NewScope()

	require.NoError(t, scope.Attach("buf", &orderedDestroyer{"first", &order}))
	err := scope.Attach("buf", &orderedDestroyer{"second", &order})
	require.ErrorIs(t, err, ErrPreconditionViolated)

	// The first registration survives.
	require.Equal(t, 1, scope.Len())
	scope.Release()
	require.Equal(t, []string{"first"}, order)
}

func TestScopeFind(t *testing.T) {
	var order []string
	scope := NewScope()
	d := &orderedDestroyer{"buf", &order}

	require.NoError(t, scope.Attach("buf", d))
	require.Equal(t, Destroyer(d), scope.Find("buf"))
	require.Nil(t, scope.Find("missing"))
}
