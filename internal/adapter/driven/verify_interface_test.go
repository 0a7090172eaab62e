package driven

import (
	port "github.com/alorle/iptv-viewer/internal/port/driven"
)

// Compile-time checks that the adapters implement their ports
var (
	_ port.PlaylistRepository = (*PlaylistBoltDBRepository)(nil)
	_ port.SettingsRepository = (*SettingsBoltDBRepository)(nil)
	_ port.PlaylistFetcher    = (*PlaylistHTTPFetcher)(nil)
	_ port.Player             = (*ExecPlayer)(nil)
	_ port.Player             = (*LogPlayer)(nil)
)
