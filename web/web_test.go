package web

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplatesParse(t *testing.T) {
	tmpl, err := Templates()
	require.NoError(t, err)
	for _, name := range []string{"home.html", "about.html", "students.html", "student.html", "courses.html", "course.html", "register.html", "login.html", "feedback.html", "success.html", "404.html", "error.html"} {
		assert.NotNil(t, tmpl.Lookup(name), name)
	}

	var buf bytes.Buffer
	require.NoError(t, tmpl.ExecuteTemplate(&buf, "success.html", map[string]interface{}{
		"Title":   "Регистрация",
		"Message": "Регистрация прошла успешно!",
	}))
	assert.Contains(t, buf.String(), "Регистрация прошла успешно!")
}

func TestFuncs(t *testing.T) {
	assert.Equal(t, "Бесплатно", formatPrice(0))
	assert.Equal(t, "1500.50 ₽", formatPrice(1500.5))

	d := time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "01.09.2024", formatDate(d))
	assert.Equal(t, "01.09.2024", formatDate(&d))
	var missing *time.Time
	assert.Equal(t, "—", formatDate(missing))
}

func TestStaticServesStylesheet(t *testing.T) {
	f, err := Static().Open("style.css")
	require.NoError(t, err)
	defer f.Close()
}
