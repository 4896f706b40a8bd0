package sdmx

// Bundle is one dataflow's reference material as returned by a
// "dataflow/{id}?references=all" query.
type Bundle struct {
	DfID string
	Structures
}

// NewBundle pairs the structures of msg with the dataflow they were fetched
// for. A message without data yields an empty bundle.
func NewBundle(dfID string, msg *Message) Bundle {
	b := Bundle{DfID: dfID}
	if msg != nil && msg.Data != nil {
		b.Structures = *msg.Data
	}
	return b
}
