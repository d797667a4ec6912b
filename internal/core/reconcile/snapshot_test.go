package reconcile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/twidi/streamdeckfs-go/internal/core/entities"
)

func TestKeySnapshot_CountsActiveLayersLinesAndEvents(t *testing.T) {
	now := time.Now()
	key, err := entities.NewKey("/deck/PAGE_1/KEY_ROW_1_COL_1", now, entities.KeyID{Row: 1, Col: 1}, entities.Attrs{})
	require.NoError(t, err)

	layer, err := entities.NewLayer("/deck/PAGE_1/KEY_ROW_1_COL_1/IMAGE", now, entities.Attrs{})
	require.NoError(t, err)
	key.Layers[layer.ID] = &entities.VersionSlot{}
	key.Layers[layer.ID].Add(layer)

	disabledLayer, err := entities.NewLayer("/deck/PAGE_1/KEY_ROW_1_COL_1/IMAGE;layer=2;disabled", now, entities.Attrs{"layer": "2", "disabled": ""})
	require.NoError(t, err)
	key.Layers[disabledLayer.ID] = &entities.VersionSlot{}
	key.Layers[disabledLayer.ID].Add(disabledLayer)

	line, err := entities.NewTextLine("/deck/PAGE_1/KEY_ROW_1_COL_1/TEXT", now, entities.Attrs{})
	require.NoError(t, err)
	key.Lines[line.ID] = &entities.VersionSlot{}
	key.Lines[line.ID].Add(line)

	press, err := entities.NewEvent("/deck/PAGE_1/KEY_ROW_1_COL_1/ON_PRESS", now, entities.EventPress, entities.Attrs{})
	require.NoError(t, err)
	key.Events[entities.EventPress] = &entities.VersionSlot{}
	key.Events[entities.EventPress].Add(press)

	snap := keySnapshot(key)
	require.Equal(t, 1, snap.Row)
	require.Equal(t, 1, snap.Col)
	require.Equal(t, 1, snap.Layers, "the disabled layer candidate must not count as active")
	require.Equal(t, 1, snap.Lines)
	require.Equal(t, []string{"press"}, snap.Events)
}

func TestPageSnapshot_OrdersKeysByRowThenCol(t *testing.T) {
	now := time.Now()
	page, err := entities.NewPage("/deck/PAGE_1", now, 1, entities.Attrs{"name": "main"})
	require.NoError(t, err)

	for _, id := range []entities.KeyID{{Row: 2, Col: 1}, {Row: 1, Col: 2}, {Row: 1, Col: 1}} {
		k, err := entities.NewKey("/deck/PAGE_1/ignored", now, id, entities.Attrs{})
		require.NoError(t, err)
		page.Keys[id] = &entities.VersionSlot{}
		page.Keys[id].Add(k)
	}

	snap := pageSnapshot(page)
	require.Equal(t, 1, snap.Number)
	require.Equal(t, "main", snap.Name)
	require.Len(t, snap.Keys, 3)
	require.Equal(t, [][2]int{{1, 1}, {1, 2}, {2, 1}}, [][2]int{
		{snap.Keys[0].Row, snap.Keys[0].Col},
		{snap.Keys[1].Row, snap.Keys[1].Col},
		{snap.Keys[2].Row, snap.Keys[2].Col},
	})
}
