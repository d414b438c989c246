package render

import "fmt"

// FormatDuration renders whole seconds as "N seconds", "Xm Ys" or
// "Xh Ym Zs".
func FormatDuration(seconds int64) string {
	if seconds < 60 {
		return fmt.Sprintf("%d seconds", seconds)
	}
	minutes := seconds / 60
	remSeconds := seconds % 60
	if minutes < 60 {
		return fmt.Sprintf("%dm %ds", minutes, remSeconds)
	}
	hours := minutes / 60
	remMinutes := minutes % 60
	return fmt.Sprintf("%dh %dm %ds", hours, remMinutes, remSeconds)
}
