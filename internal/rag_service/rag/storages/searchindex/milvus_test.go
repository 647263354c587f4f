package searchindex

import (
	"testing"

	"taxcopilot/internal/rag_service/rag/schema"
)

func TestBuildFilterExpression(t *testing.T) {
	tests := []struct {
		name    string
		filters *schema.QueryFilters
		want    string
	}{
		{"nil", nil, ""},
		{"empty", &schema.QueryFilters{}, ""},
		{"single", &schema.QueryFilters{Jurisdiction: "DE"}, `jurisdiction == "DE"`},
		{
			"all",
			&schema.QueryFilters{Jurisdiction: "DE", TaxType: "VAT", Version: "2024"},
			`jurisdiction == "DE" and tax_type == "VAT" and version == "2024"`,
		},
		{"quotes escaped", &schema.QueryFilters{TaxType: `a"b`}, `tax_type == "a\"b"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := buildFilterExpression(tt.filters); got != tt.want {
				t.Errorf("buildFilterExpression() = %q, want %q", got, tt.want)
			}
		})
	}
}
