// Package browser fetches browser-rendered pages.
//
// The results pages only populate their tables after scripts run, so plain
// HTTP GETs are not enough; Chrome drives a headless browser tab and hands
// the rendered markup back as a goquery document. The tab is an exclusively
// owned resource: one Chrome belongs to one scraping session and its fetches
// must stay sequential.
package browser
