package payload

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"elem-admin/internal/service/draft"
)

func TestStorageItems(t *testing.T) {
	req := Request{Items: []Item{
		{ItemNo: 3, Title: "Chair", Image: "https://drive/chair.png"},
		{Title: "Lamp", Image: " data:image/jpeg;base64,aGk= ", ImageName: "lamp.jpg"},
		{Title: "Rug"},
	}}

	items, err := req.StorageItems()
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.Equal(t, 3, items[0].ItemNo)
	assert.Equal(t, "https://drive/chair.png", items[0].Image.URL)
	assert.Nil(t, items[0].Image.Pending)

	require.NotNil(t, items[1].Image.Pending)
	assert.Equal(t, "lamp.jpg", items[1].Image.Pending.Name)
	assert.Equal(t, "image/jpeg", items[1].Image.Pending.MimeType)
	assert.Equal(t, []byte("hi"), items[1].Image.Pending.Data)
	assert.Empty(t, items[1].Image.URL)

	assert.Empty(t, items[2].Image.URL)
}

func TestStorageItems_BadDataURI(t *testing.T) {
	_, err := Request{Items: []Item{{Title: "x"}, {Title: "y", Image: "data:image/png;base64,%%%"}}}.StorageItems()
	require.ErrorIs(t, err, ErrBadImage)
	assert.Contains(t, err.Error(), "item 2")
}

func TestReason(t *testing.T) {
	reason, ok := Reason(fmt.Errorf("service.draft.AddItem: %w", draft.ErrInvalidPrice))
	assert.True(t, ok)
	assert.Equal(t, "please enter valid price", reason)

	_, ok = Reason(fmt.Errorf("spreadsheet api error"))
	assert.False(t, ok)
}
