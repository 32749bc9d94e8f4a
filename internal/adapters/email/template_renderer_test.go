package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"hirelens/internal/domain"
)

func TestTemplateRenderer_Render_booking_confirmed(t *testing.T) {
	r := NewTemplateRenderer()
	data := &domain.BookingConfirmationEmailData{
		Email:           "sam@example.com",
		RecipientName:   "Sam",
		CounterpartName: "Ada <script>",
		Company:         "Acme",
		Date:            "2025-01-01",
		Time:            "10:00",
		RoomID:          "room-abc",
	}

	subject, html, text, err := r.Render(TemplateBookingConfirmed, data)
	require.NoError(t, err)
	assert.Equal(t, "Interview confirmed for 2025-01-01 at 10:00", subject)
	assert.Contains(t, text, "Ada <script> (Acme)")
	assert.Contains(t, text, "room-abc")
	assert.Contains(t, html, "Ada &lt;script&gt;")
	assert.NotContains(t, html, "<script>")
}

func TestTemplateRenderer_Render_unknown_template(t *testing.T) {
	_, _, _, err := NewTemplateRenderer().Render("does_not_exist", nil)
	assert.Error(t, err)
}
