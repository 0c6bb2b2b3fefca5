package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizers(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Tuxtla Gutiérrez, Chiapas", SanitizeString("  Tuxtla   Gutiérrez,\n Chiapas "))
	assert.Equal(t, "cliente@empresa.mx", SanitizeEmail("  Cliente@Empresa.MX "))
	assert.Equal(t, "961-155-3538", SanitizePhone("(961) 155 3538"))
	assert.Equal(t, "961-155-3538", SanitizePhone("9611553538"))
	assert.Equal(t, "+52 961", SanitizePhone(" +52 961 "))
}

func TestEmailAndPhone(t *testing.T) {
	t.Parallel()

	assert.True(t, IsEmail("a@b.co"))
	assert.False(t, IsEmail("a@b"))
	assert.False(t, IsEmail("a b@c.d"))
	assert.True(t, IsPhone("961-155-3538"))
	assert.False(t, IsPhone("9611553538"))
}

func TestErrors(t *testing.T) {
	t.Parallel()

	errs := Errors{}
	require.NoError(t, errs.Err())

	Email(errs, "email", "")
	Email(errs, "email", "bad")
	Name(errs, "nombre", "Nombre", "A")
	Phone(errs, "telefono", "123")
	Password(errs, "password", "short")
	Company(errs, "nombre_empresa", "")
	Required(errs, "ubicacion", "Ubicación es requerida", "  ")

	require.Error(t, errs.Err())
	assert.Equal(t, "Correo electrónico es requerido", errs["email"])
	assert.Equal(t, "Nombre debe tener al menos 2 caracteres", errs["nombre"])
	assert.Equal(t, "Formato de teléfono inválido (000-000-0000)", errs["telefono"])
	assert.Equal(t, "La contraseña debe tener al menos 8 caracteres", errs["password"])
	assert.Equal(t, "Nombre de empresa debe tener al menos 2 caracteres", errs["nombre_empresa"])
	assert.Equal(t, "Ubicación es requerida", errs["ubicacion"])
	assert.Contains(t, errs.Error(), "email: Correo electrónico es requerido")
}
