package services

import "errors"

// Errores de negocio de los servicios. Los handlers los traducen a códigos
// HTTP; ningún servicio conoce gin ni códigos de estado.
var (
	ErrUsuarioNoEncontrado = errors.New("usuario no registrado en la plataforma")
	ErrUsuarioInactivo     = errors.New("usuario inactivo")
	ErrSinPermiso          = errors.New("permiso insuficiente para la operación")

	ErrEncuestaNoAutorizada = errors.New("encuesta individual reservada a su destinatario")
	ErrEncuestaYaRespondida = errors.New("encuesta ya respondida")
	ErrEncuestaExpirada     = errors.New("encuesta expirada")
	ErrEncuestaSinResponder = errors.New("encuesta aún sin respuestas")
)
