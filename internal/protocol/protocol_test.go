package protocol

import (
	"testing"

	"github.com/go-playground/assert/v2"
)

func TestPathParts(t *testing.T) {
	assert.Equal(t, "sharedProfile", PathSharedProfile.Type())
	assert.Equal(t, PathFollowing, PathSharedProfile.Parent())
	assert.Equal(t, Path(""), PathFollowing.Parent())
	assert.Equal(t, URI+"/sharedProfile", PathSharedProfile.Schema())
	assert.Equal(t, FormatJSON, PathPost.DataFormat())
	assert.Equal(t, FormatText, PathPostComment.DataFormat())
}

func TestPathValid(t *testing.T) {
	assert.Equal(t, true, PathMessage.Valid())
	assert.Equal(t, false, Path("match").Valid())
	assert.Equal(t, false, Path("").Valid())
}

func TestAllowsAnyone(t *testing.T) {
	none := func(Path) (string, string, bool) { return "", "", false }
	assert.Equal(t, true, Allows(PathFollowing, Read, "did:example:eve", none))
	assert.Equal(t, true, Allows(PathPost, Write, "did:example:eve", none))
	assert.Equal(t, false, Allows(PathPost, Read, "did:example:eve", none))
}

func TestAllowsSharedProfileParticipants(t *testing.T) {
	lookup := func(of Path) (string, string, bool) {
		if of == PathFollowing {
			return "did:example:amy", "did:example:bob", true
		}
		return "", "", false
	}

	assert.Equal(t, true, Allows(PathSharedProfile, Read, "did:example:bob", lookup))
	assert.Equal(t, true, Allows(PathSharedProfile, Write, "did:example:amy", lookup))
	assert.Equal(t, false, Allows(PathSharedProfile, Write, "did:example:bob", lookup))
	assert.Equal(t, false, Allows(PathSharedProfile, Read, "did:example:eve", lookup))
}

func TestAllowsIgnoresEmptyRecipient(t *testing.T) {
	lookup := func(of Path) (string, string, bool) { return "did:example:amy", "", true }
	assert.Equal(t, false, Allows(PathMessage, Read, "", lookup))
}
