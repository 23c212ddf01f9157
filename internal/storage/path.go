package storage

import (
	"fmt"
	"strings"
	"time"
)

const defaultExtension = "jpg"

// ObjectPath derives the storage path of an upload:
// {userID}/{userID}_{unixMillis}.{ext}. The extension is the lower-cased text
// after the last dot of filename, or "jpg" when there is none.
func ObjectPath(userID, filename string, now time.Time) string {
	return fmt.Sprintf("%s/%s_%d.%s", userID, userID, now.UnixMilli(), Extension(filename))
}

// Extension returns the lower-cased extension of filename without the dot.
func Extension(filename string) string {
	i := strings.LastIndex(filename, ".")
	if i < 0 || i == len(filename)-1 {
		return defaultExtension
	}
	ext := strings.ToLower(filename[i+1:])
	if strings.ContainsAny(ext, "/\\") {
		return defaultExtension
	}
	return ext
}
