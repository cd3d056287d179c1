package metrics

const namespace = "volunteerlinks"

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
