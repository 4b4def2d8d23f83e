package graph

// TypeEntity is the type tag given to every extracted node.
const TypeEntity = "entity"

// Relation labels produced by the extraction pattern table.
const (
	RelIsA     = "is_a"
	RelHas     = "has"
	RelWorksAt = "works_at"
	RelLivesIn = "lives_in"
	RelFounded = "founded"
	RelCreated = "created"
)

// Entity is a node in the graph identified by its exact label.
type Entity struct {
	Label string `json:"label" msgpack:"label"`
	Type  string `json:"type" msgpack:"type"`
}

// Relation is a directed, labeled edge between two entities.
type Relation struct {
	From  string `json:"from" msgpack:"from"`
	To    string `json:"to" msgpack:"to"`
	Label string `json:"relation" msgpack:"relation"`
}

// Triple is a raw subject/predicate/object match taken from a chunk before the
// subject and object have been mapped to entity labels.
type Triple struct {
	Subject   string `json:"subject"`
	Predicate string `json:"predicate"`
	Object    string `json:"object"`
}

// BuildReport counts what happened during a build. Rejected matches failed
// the entity-overlap filter of the relation extractor; dropped triples passed
// it but could not be mapped onto an entity label during assembly.
type BuildReport struct {
	Chunks   int `json:"chunks"`
	Entities int `json:"entities"`
	Triples  int `json:"triples"`
	Rejected int `json:"rejected"`
	Dropped  int `json:"dropped"`
	Edges    int `json:"edges"`
}
