package tripparams

// Store persists a single TravelParams record.
//
// Persistence is best-effort: Save, UpdateField and Clear never surface
// failures to the caller. A lost write costs the user a re-entered form,
// which is preferable to blocking the flow, so failures are logged and
// swallowed inside the store.
type Store interface {
	// Save overwrites the whole record with params. Callers that want
	// merge semantics must Load and merge first.
	Save(params TravelParams)

	// Load returns the stored record. The second return is false when no
	// record exists or the stored record cannot be decoded.
	Load() (TravelParams, bool)

	// UpdateField loads the current record (or starts empty), overwrites
	// one field and saves the result. Not atomic across concurrent
	// callers; the store assumes a single writer at a time.
	UpdateField(field Field, value string)

	// Clear deletes the record entirely.
	Clear()
}
