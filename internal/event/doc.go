// Package event defines the engine's event model and the mapping between it
// and the Google Calendar wire representation.
//
// The mapper is the only place a wire event is interpreted: pulled items are
// normalized into Snapshot values, and local events are rendered into request
// bodies for insert/patch calls. Both directions handle the two time shapes
// a remote event can carry (whole-day date endpoints versus zoned datetime
// endpoints) and the private extended-property slot that stores the shift
// calendar's semantic event type.
package event
