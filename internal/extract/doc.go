// Package extract parses parkrun pages into the result model.
//
// Summary handles an event's landing page (name, latest event number, the
// open-ended stats/records mapping); Results handles one event instance's
// results table. Both work on rendered documents and fail loudly when a
// required landmark is missing rather than guessing at page shape.
package extract
