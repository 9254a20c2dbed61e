package infra

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMediaResolver(t *testing.T) {
	r := NewMediaResolver("https://media.example.com/files/")

	assert.Equal(t, "https://media.example.com/files/obs/1.jpg", r.Resolve("obs/1.jpg"))
	assert.Equal(t, "https://media.example.com/files/obs/1.jpg", r.Resolve("/obs/1.jpg"))
	assert.Equal(t, "", r.Resolve(""))

	// 完整 URL 原样返回
	assert.Equal(t, "https://cdn.example.com/x.jpg", r.Resolve("https://cdn.example.com/x.jpg"))
}
