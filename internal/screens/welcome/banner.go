package welcome

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/adaptlearn/internal/ui/theme"
)

const bannerArt = `
    _      _             _   _
   /_\  __| |__ _ _ __ _| |_| |   ___ __ _ _ _ _ _
  / _ \/ _' / _' | '_ \  _| |__/ -_) _' | '_| ' \
 /_/ \_\__,_\__,_| .__/\__|____\___\__,_|_| |_||_|
                 |_|`

const bannerCompact = "A D A P T L E A R N"

// RenderBanner returns the banner styled in the primary color, with a
// compact fallback for terminals narrower than 56 columns.
func RenderBanner(width int) string {
	style := lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true)

	if width < 56 {
		return style.Render(bannerCompact)
	}
	return style.Render(bannerArt)
}
