package ingest

// Pipeline is an ordered list of Processors applied in sequence before
// indexing (spec §4.6).
type Pipeline struct {
	Name       string
	Processors []Processor
}

// Run applies every processor in order, short-circuiting on the first
// error.
func (p *Pipeline) Run(d Document) (Document, error) {
	out := d.Clone()
	var err error
	for _, proc := range p.Processors {
		out, err = proc.Process(out)
		if err != nil {
			return Document{}, err
		}
	}
	return out, nil
}
