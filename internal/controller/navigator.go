package controller

// Screen names understood by the presentation layer's router.
const (
	ScreenMainList    = "MainList"
	ScreenPendingList = "PendingList"
	ScreenJobDetail   = "JobDetail"
)

// Navigator is the narrow contract into the presentation layer's router.
// Controllers call it after transitions that move the job out of the current
// screen's view.
type Navigator interface {
	NavigateTo(screen string, params map[string]string)
}

// NopNavigator satisfies Navigator for headless use.
type NopNavigator struct{}

func (NopNavigator) NavigateTo(string, map[string]string) {}
