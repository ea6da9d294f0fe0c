// Package planner decides which event numbers a fetch call still needs to
// retrieve, given what the session has already collected.
package planner
