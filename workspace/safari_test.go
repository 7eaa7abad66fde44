package workspace

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSafari struct {
	sets    [][]string
	setsErr error

	closedBlanks bool
	closeErr     error

	opened [][]string
	openErr error
}

func (f *fakeSafari) TabSets() ([][]string, error) {
	if f.setsErr != nil {
		return nil, f.setsErr
	}
	return f.sets, nil
}

func (f *fakeSafari) CloseBlankWindows() error {
	f.closedBlanks = true
	return f.closeErr
}

func (f *fakeSafari) OpenWindow(urls []string) error {
	if f.openErr != nil {
		return f.openErr
	}
	f.opened = append(f.opened, urls)
	return nil
}

func newSafariExtractor(client SafariTabs) *SafariExtractor {
	e := NewSafariExtractor(client, 0)
	e.sleep = func(time.Duration) {}
	return e
}

func TestSafariCapture(t *testing.T) {
	client := &fakeSafari{sets: [][]string{
		{"https://example.com", "https://example.org"},
		{"https://news.example"},
	}}

	entry := AppEntry{Name: "Safari", BundleID: SafariBundleID}
	require.NoError(t, newSafariExtractor(client).Capture(&entry))

	assert.Equal(t, client.sets, entry.SafariTabs)
}

func TestSafariCapture_Error(t *testing.T) {
	client := &fakeSafari{setsErr: errors.New("scripting unavailable")}

	entry := AppEntry{}
	assert.Error(t, newSafariExtractor(client).Capture(&entry))
	assert.Nil(t, entry.SafariTabs)
}

func TestSafariRestore_OpensMissingWindows(t *testing.T) {
	client := &fakeSafari{}

	entry := AppEntry{SafariTabs: [][]string{
		{"https://example.com", "https://example.org"},
		{"https://news.example"},
	}}
	require.NoError(t, newSafariExtractor(client).Restore(entry))

	assert.True(t, client.closedBlanks)
	assert.Equal(t, entry.SafariTabs, client.opened)
}

func TestSafariRestore_SkipsAlreadyOpenSet(t *testing.T) {
	// the open window has the same tabs in a different order
	client := &fakeSafari{sets: [][]string{
		{"https://example.org", "https://example.com"},
	}}

	entry := AppEntry{SafariTabs: [][]string{
		{"https://example.com", "https://example.org"},
		{"https://news.example"},
	}}
	require.NoError(t, newSafariExtractor(client).Restore(entry))

	require.Len(t, client.opened, 1)
	assert.Equal(t, []string{"https://news.example"}, client.opened[0])
}

func TestSafariRestore_DuplicateURLsAreNotASet(t *testing.T) {
	client := &fakeSafari{sets: [][]string{
		{"https://example.com", "https://example.com"},
	}}

	entry := AppEntry{SafariTabs: [][]string{
		{"https://example.com", "https://example.org"},
	}}
	require.NoError(t, newSafariExtractor(client).Restore(entry))

	assert.Len(t, client.opened, 1)
}

func TestSafariRestore_EmptySetsDiscarded(t *testing.T) {
	client := &fakeSafari{}

	entry := AppEntry{SafariTabs: [][]string{{}, nil}}
	require.NoError(t, newSafariExtractor(client).Restore(entry))

	assert.False(t, client.closedBlanks)
	assert.Empty(t, client.opened)
}

func TestSafariRestore_ReadFailureAssumesNoneOpen(t *testing.T) {
	client := &fakeSafari{setsErr: errors.New("timed out")}

	entry := AppEntry{SafariTabs: [][]string{{"https://example.com"}}}
	require.NoError(t, newSafariExtractor(client).Restore(entry))

	require.Len(t, client.opened, 1)
}

func TestSameURLSet(t *testing.T) {
	assert.True(t, sameURLSet([]string{"a", "b"}, []string{"b", "a"}))
	assert.True(t, sameURLSet(nil, nil))
	assert.False(t, sameURLSet([]string{"a"}, []string{"a", "a"}))
	assert.False(t, sameURLSet([]string{"a", "a"}, []string{"a", "b"}))
	assert.False(t, sameURLSet([]string{"a"}, []string{"b"}))
}
