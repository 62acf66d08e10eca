package errs

import "fmt"

type Code string

const (
	NoWorkspaceConfigured Code = "NO_WORKSPACE_CONFIGURED"
	RefreshWithoutSource  Code = "REFRESH_WITHOUT_SOURCE"
)

var messages = map[Code]string{
	NoWorkspaceConfigured: `No workspace configured

The site runs in empty mode until a workspace URL is set:
  - in the config file:    workspace_url: https://...
  - or via environment:    INKSTREAM_WORKSPACE_URL=https://...

This is not an error for 'serve': the server starts and renders with
zero dynamic items.`,

	RefreshWithoutSource: `Nothing to refresh: no workspace configured

'%[1]s' forces a refetch from the remote workspace, which requires a
workspace URL. Set workspace_url in the config file or set the
INKSTREAM_WORKSPACE_URL environment variable first.`,
}

func Msg(code Code, a ...any) string {
	msg := messages[code]
	if msg == "" {
		msg = string(code)
	}
	return fmt.Sprintf(msg, a...)
}
