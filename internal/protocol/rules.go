package protocol

// Role names who an action rule applies to.
type Role string

const (
	Anyone    Role = "anyone"
	Author    Role = "author"
	Recipient Role = "recipient"
)

type Verb string

const (
	Read  Verb = "read"
	Write Verb = "write"
)

// Action is one "$actions" entry: Who, relative to the record at path Of,
// Can perform a verb. Of is empty for Anyone.
type Action struct {
	Who Role
	Of  Path
	Can Verb
}

// Structure holds the action rules of each protocol path.
var Structure = map[Path][]Action{
	PathProfile: {
		{Who: Anyone, Can: Write},
		{Who: Author, Of: PathProfile, Can: Read},
	},
	PathProfileImage: {
		{Who: Author, Of: PathProfile, Can: Write},
	},
	PathFollowing: {
		{Who: Anyone, Can: Write},
		{Who: Anyone, Can: Read},
	},
	PathSharedProfile: {
		{Who: Author, Of: PathFollowing, Can: Write},
		{Who: Author, Of: PathFollowing, Can: Read},
		{Who: Recipient, Of: PathFollowing, Can: Read},
	},
	PathPost: {
		{Who: Anyone, Can: Write},
		{Who: Recipient, Of: PathPost, Can: Read},
		{Who: Author, Of: PathPost, Can: Read},
	},
	PathPostComment: {
		{Who: Author, Of: PathPost, Can: Write},
		{Who: Author, Of: PathPost, Can: Read},
		{Who: Recipient, Of: PathPost, Can: Write},
		{Who: Recipient, Of: PathPost, Can: Read},
	},
	PathMessage: {
		{Who: Anyone, Can: Write},
		{Who: Recipient, Of: PathMessage, Can: Read},
		{Who: Author, Of: PathMessage, Can: Read},
	},
}

// Participants reports the author and recipient of the record at a given
// path in a record's ancestry. ok is false when no such ancestor exists.
type Participants func(of Path) (author, recipient string, ok bool)

// Allows evaluates the rules of path for actor. The tenant owner is not
// special-cased here; callers grant owners full access before asking.
func Allows(path Path, verb Verb, actor string, lookup Participants) bool {
	for _, a := range Structure[path] {
		if a.Can != verb {
			continue
		}
		if a.Who == Anyone {
			return true
		}
		author, recipient, ok := lookup(a.Of)
		if !ok {
			continue
		}
		switch a.Who {
		case Author:
			if actor == author {
				return true
			}
		case Recipient:
			if recipient != "" && actor == recipient {
				return true
			}
		}
	}
	return false
}
