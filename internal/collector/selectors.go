package collector

import "github.com/andybalholm/cascadia"

var (
	selImages     = cascadia.MustCompile("img, area, svg")
	selFrames     = cascadia.MustCompile("frame, iframe")
	selLinks      = cascadia.MustCompile("a[href], [role=link]")
	selHeadings   = cascadia.MustCompile("h1, h2, h3, h4, h5, h6, [role=heading]")
	selFormFields = cascadia.MustCompile(`input:not([type=hidden]):not([type=submit]):not([type=button]):not([type=reset]):not([type=image]), select, textarea`)
	selText       = cascadia.MustCompile("p, span, a, li, label, button, h1, h2, h3, h4, h5, h6, td, th")
)
