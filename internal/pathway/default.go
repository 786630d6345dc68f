package pathway

// DefaultMetabolitePathways returns the built-in metabolite → pathway map
// used for the strain heatmap. These entries will be replaced by a KEGG
// completeness check once reconstructions carry pathway identifiers.
func DefaultMetabolitePathways() Mapping {
	return Mapping{
		"D-Glucose":   "Glycolysis",
		"Pyruvate":    "Glycolysis",
		"ToxinA":      "Virulence Factors",
		"Salivaricin": "Bacteriocin Production",
	}
}

// DefaultGenePathways returns the built-in host gene → signaling pathway map
// used for the metabolite–pathway graph.
func DefaultGenePathways() Mapping {
	return Mapping{
		"NFKB1": "NF-kappa B signaling pathway",
		"TNF":   "NF-kappa B signaling pathway",
		"IL6":   "JAK-STAT signaling pathway",
		"JUN":   "MAPK signaling pathway",
		"FOS":   "MAPK signaling pathway",
	}
}

// Other is the pathway assigned to unmapped genes.
const Other = "Other"
