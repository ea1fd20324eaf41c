package application_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ericfisherdev/jobmatch/internal/application"
)

func TestNormalizeJobText(t *testing.T) {
	tests := []struct {
		name        string
		in          string
		contentType string
		want        string
	}{
		{name: "empty", in: "", want: ""},
		{name: "plain text trimmed", in: "  Go developer \n", want: "Go developer"},
		{
			name: "plain text keeps angle brackets",
			in:   " Audit templates for <script> injection and <iframe> sandboxing, where a<b and b>c. ",
			want: "Audit templates for <script> injection and <iframe> sandboxing, where a<b and b>c.",
		},
		{
			name:        "explicit plain type",
			in:          "<b>Go</b> developer",
			contentType: application.JobTextPlain,
			want:        "<b>Go</b> developer",
		},
		{name: "html tags stripped", in: "<div><b>Go</b> developer</div>", contentType: application.JobTextHTML, want: "Go developer"},
		{name: "html script dropped", in: "Go<script>alert(1)</script> developer", contentType: application.JobTextHTML, want: "Go developer"},
		{name: "html entities decoded", in: "R&amp;D team, salary &gt; 100k", contentType: application.JobTextHTML, want: "R&D team, salary > 100k"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, application.NormalizeJobText(tt.in, tt.contentType))
		})
	}
}
