package template_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jobseek-id/auto-emailer/internal/template"
)

func TestBuildSubject_Synthesized(t *testing.T) {
	assert.Equal(t, "Backend Engineer - John",
		template.BuildSubject("", "Backend Engineer", "John"))

	assert.Equal(t, "Lamaran Pekerjaan - John",
		template.BuildSubject("", "", "John"))
}

func TestBuildSubject_ExplicitNameWord(t *testing.T) {
	tests := []struct {
		name    string
		subject string
		want    string
	}{
		{"underscore separators", "Lowongan_Nama_Backend", "Lowongan_John_Backend"},
		{"dash separators", "Lowongan-nama-Backend", "Lowongan-John-Backend"},
		{"space separators", "Lamaran nama disini", "Lamaran John disini"},
		{"case-insensitive", "NAMA", "John"},
		{"word at end of string", "Lamaran nama", "Lamaran John"},
		{"word at start of string", "nama_Backend", "John_Backend"},
		{"substring of longer token untouched", "kirim ke namafile", "kirim ke namafile"},
		{"prefixed token untouched", "burnama", "burnama"},
		{"non-ascii letter continues the token", "kirim namaé", "kirim namaé"},
		{"non-ascii letter precedes the token", "énama Backend", "énama Backend"},
		{"non-ascii text elsewhere", "résumé nama", "résumé John"},
		{"other placeholders untouched", "Lowongan {{position}} nama", "Lowongan {{position}} John"},
		{"no occurrence", "Lamaran Pekerjaan Backend", "Lamaran Pekerjaan Backend"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, template.BuildSubject(tt.subject, "Backend", "John"))
		})
	}
}
