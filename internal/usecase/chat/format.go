package chat

import "time"

// dateFormat is how timestamps render in prompts and summaries.
const dateFormat = "2006-01-02 15:04"

func formatDate(t time.Time) string {
	return t.Format(dateFormat)
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
