package service

import (
	"bytes"
	"mime/multipart"
	"net/textproto"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tip2talk/server/internal/model"
	"github.com/tip2talk/server/internal/validation"
)

type fakeFile struct{ *bytes.Reader }

func (f fakeFile) Close() error { return nil }

func upload(filename, contentType string, size int64, content []byte) (multipart.File, *multipart.FileHeader) {
	header := &multipart.FileHeader{
		Filename: filename,
		Size:     size,
		Header:   textproto.MIMEHeader{"Content-Type": []string{contentType}},
	}
	return fakeFile{bytes.NewReader(content)}, header
}

func TestSendTextRejectsWhitespaceOnly(t *testing.T) {
	deps := newTestDeps(t)
	creator := deps.profile(t, "creator", true)
	fan := deps.profile(t, "fan", false)
	conversation := deps.conversation(t, creator, fan)

	before := conversation.LastMessageAt

	for _, content := range []string{"", "   ", "\n\t  \n"} {
		_, err := deps.chat.SendText(conversation.ID, fan.ID, content)
		assert.ErrorIs(t, err, ErrEmptyMessage)
	}

	// No row was written and the conversation clock did not move.
	messages, err := deps.chat.Thread(conversation.ID, fan.ID)
	require.NoError(t, err)
	assert.Empty(t, messages)

	reloaded, err := deps.chat.Conversation(conversation.ID, fan.ID)
	require.NoError(t, err)
	assert.WithinDuration(t, before, reloaded.LastMessageAt, time.Second)
}

func TestSendTextTrimsContent(t *testing.T) {
	deps := newTestDeps(t)
	creator := deps.profile(t, "creator", true)
	fan := deps.profile(t, "fan", false)
	conversation := deps.conversation(t, creator, fan)

	message, err := deps.chat.SendText(conversation.ID, fan.ID, "  hello there  ")
	require.NoError(t, err)
	assert.Equal(t, "hello there", message.Content)
}

func TestSendTextRequiresParticipant(t *testing.T) {
	deps := newTestDeps(t)
	creator := deps.profile(t, "creator", true)
	fan := deps.profile(t, "fan", false)
	outsider := deps.profile(t, "outsider", false)
	conversation := deps.conversation(t, creator, fan)

	_, err := deps.chat.SendText(conversation.ID, outsider.ID, "hi")
	assert.ErrorIs(t, err, ErrNotParticipant)
}

func TestThreadOrdersOldestFirst(t *testing.T) {
	deps := newTestDeps(t)
	creator := deps.profile(t, "creator", true)
	fan := deps.profile(t, "fan", false)
	conversation := deps.conversation(t, creator, fan)

	for _, content := range []string{"one", "two", "three"} {
		_, err := deps.chat.SendText(conversation.ID, fan.ID, content)
		require.NoError(t, err)
		time.Sleep(2 * time.Millisecond)
	}

	views, err := deps.chat.Thread(conversation.ID, fan.ID)
	require.NoError(t, err)
	require.Len(t, views, 3)
	assert.Equal(t, "one", views[0].Content)
	assert.Equal(t, "three", views[2].Content)
}

func TestThreadLocksPricedMediaUntilPurchased(t *testing.T) {
	deps := newTestDeps(t)
	creator := deps.profile(t, "creator", true)
	fan := deps.profile(t, "fan", false)
	conversation := deps.conversation(t, creator, fan)

	price := 999
	file, header := upload("pic.jpg", "image/jpeg", 123, []byte("jpegdata"))
	message, err := deps.chat.SendMedia(conversation.ID, creator, file, header, &price, "exclusive")
	require.NoError(t, err)

	// Fan without a purchase sees the message locked with no URL.
	views, err := deps.chat.Thread(conversation.ID, fan.ID)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.True(t, views[0].Locked)
	assert.Empty(t, views[0].MediaURL)
	require.NotNil(t, views[0].MediaPrice)
	assert.Equal(t, price, *views[0].MediaPrice)

	// The sender always sees their own media.
	views, err = deps.chat.Thread(conversation.ID, creator.ID)
	require.NoError(t, err)
	assert.False(t, views[0].Locked)
	assert.NotEmpty(t, views[0].MediaURL)

	// After the entitlement is recorded the fan sees it unlocked.
	require.NoError(t, deps.purchases.Create(&model.MediaPurchase{
		MessageID: message.ID,
		BuyerID:   fan.ID,
		Amount:    price,
	}))

	views, err = deps.chat.Thread(conversation.ID, fan.ID)
	require.NoError(t, err)
	assert.False(t, views[0].Locked)
	assert.NotEmpty(t, views[0].MediaURL)
}

func TestSendMediaPriceRequiresCreator(t *testing.T) {
	deps := newTestDeps(t)
	creator := deps.profile(t, "creator", true)
	fan := deps.profile(t, "fan", false)
	conversation := deps.conversation(t, creator, fan)

	price := 500
	file, header := upload("pic.jpg", "image/jpeg", 123, []byte("jpegdata"))
	_, err := deps.chat.SendMedia(conversation.ID, fan, file, header, &price, "")
	assert.ErrorIs(t, err, ErrPriceNotAllowed)
}

func TestSendMediaRejectsOversizeBeforeStoring(t *testing.T) {
	deps := newTestDeps(t)
	creator := deps.profile(t, "creator", true)
	fan := deps.profile(t, "fan", false)
	conversation := deps.conversation(t, creator, fan)

	file, header := upload("movie.mp4", "video/mp4", validation.MaxMediaSize+1, []byte("x"))
	_, err := deps.chat.SendMedia(conversation.ID, creator, file, header, nil, "")
	assert.ErrorIs(t, err, validation.ErrFileTooLarge)

	assert.Empty(t, deps.storage.files)
	views, threadErr := deps.chat.Thread(conversation.ID, fan.ID)
	require.NoError(t, threadErr)
	assert.Empty(t, views)
}

func TestSendMediaRejectsUnsupportedType(t *testing.T) {
	deps := newTestDeps(t)
	creator := deps.profile(t, "creator", true)
	fan := deps.profile(t, "fan", false)
	conversation := deps.conversation(t, creator, fan)

	file, header := upload("doc.pdf", "application/pdf", 100, []byte("pdf"))
	_, err := deps.chat.SendMedia(conversation.ID, creator, file, header, nil, "")
	assert.ErrorIs(t, err, validation.ErrUnsupportedMedia)
	assert.Empty(t, deps.storage.files)
}

func TestInboxValidatesFilter(t *testing.T) {
	deps := newTestDeps(t)
	creator := deps.profile(t, "creator", true)

	_, err := deps.chat.Inbox(creator.ID, "", "bogus")
	assert.ErrorIs(t, err, ErrUnknownFilter)

	for _, filter := range []string{"", "all", "paid", "recent"} {
		_, err := deps.chat.Inbox(creator.ID, "", filter)
		assert.NoError(t, err, "filter %q", filter)
	}
}

func TestStartConversationRules(t *testing.T) {
	deps := newTestDeps(t)
	creator := deps.profile(t, "creator", true)
	fan := deps.profile(t, "fan", false)

	_, err := deps.chat.StartConversation(fan, creator.ID)
	assert.ErrorIs(t, err, ErrNotACreator)

	_, err = deps.chat.StartConversation(creator, creator.ID)
	assert.ErrorIs(t, err, ErrSelfChat)

	first, err := deps.chat.StartConversation(creator, fan.ID)
	require.NoError(t, err)
	second, err := deps.chat.StartConversation(creator, fan.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}
