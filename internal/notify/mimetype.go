package notify

import "strings"

// mimeAliases maps alternative mimetype spellings onto their canonical name,
// following the shared-mime-info database.
var mimeAliases = map[string]string{
	"text/directory":              "text/vcard",
	"text/x-vcard":                "text/vcard",
	"application/vcard":           "text/vcard",
	"text/x-vcalendar":            "text/calendar",
	"application/ics":             "text/calendar",
	"message/news":                "message/rfc822",
	"application/x-mbox":          "application/mbox",
	"text/x-csv":                  "text/csv",
	"text/comma-separated-values": "text/csv",
	"inode/folder":                "inode/directory",
}

// CanonicalMimeType lowercases name, drops any parameters and resolves known
// aliases so equivalent spellings compare equal.
func CanonicalMimeType(name string) string {
	name, _, _ = strings.Cut(name, ";")
	name = strings.ToLower(strings.TrimSpace(name))
	if canonical, ok := mimeAliases[name]; ok {
		return canonical
	}
	return name
}
