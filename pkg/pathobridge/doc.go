// Package pathobridge runs the host-pathogen bridging pipeline: host
// differential expression and enrichment, strain metabolism comparison,
// metabolite-target bridging, immunomodulatory prediction and the final
// candidate ranking.
//
// Quick start:
//
//	p, err := pathobridge.New(pathobridge.WithRoot("/data/study"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	m, err := p.Run(ctx)
//	if errors.Is(err, pathobridge.ErrMissingInput) {
//	    log.Fatalf("%v (%s)", err, pathobridge.Hint(err))
//	}
//	fmt.Println(m.RunID, len(m.Stages))
//
// Configuration starts from the PATHOBRIDGE_* environment variables; options
// override individual settings. Stages exchange data only through files under
// the root, so any stage can be rerun on its own with RunStage.
package pathobridge
