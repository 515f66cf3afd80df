package bytecode

import (
	"encoding/binary"
	"strings"

	"github.com/gofrs/uuid"

	"github.com/deepnoodle-ai/snakebyte/literal"
)

// namespace scopes unit IDs so they never collide with other v5 UUIDs.
var namespace = uuid.NewV5(uuid.NamespaceURL, "https://github.com/deepnoodle-ai/snakebyte/unit")

// ComputeID returns the name-based UUID for the unit's content. The ID
// covers the code bytes, every table and the metadata, but not the
// filename, so the same source assembled from two paths shares an ID.
func ComputeID(u *Unit) string {
	var b strings.Builder
	writeInt := func(n int) {
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], uint64(n))
		b.Write(buf[:])
	}
	// Fields are length-prefixed so adjacent values cannot run together.
	writeField := func(s string) {
		writeInt(len(s))
		b.WriteString(s)
	}
	writeField(u.opVersion)
	writeField(string(u.code))
	writeInt(len(u.constants))
	for _, c := range u.constants {
		writeField(literal.TypeName(c))
		writeField(literal.Repr(c))
	}
	writeInt(len(u.names))
	for _, name := range u.names {
		writeField(name)
	}
	writeInt(len(u.varNames))
	for _, name := range u.varNames {
		writeField(name)
	}
	writeField(u.unitName)
	writeField(u.sourceName)
	writeInt(u.stackSize)
	writeInt(u.flags)
	return uuid.NewV5(namespace, b.String()).String()
}
