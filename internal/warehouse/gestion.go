package warehouse

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"

	"github.com/worldwide-sa/wfsa-api/internal/models"
)

// ErrNoEncontrado indica que la fila pedida no existe en las tablas de
// gestión. Los handlers lo traducen a 404.
var ErrNoEncontrado = errors.New("registro no encontrado")

// Gestion opera las tablas de la app (usuarios, permisos, contactos,
// mensajes, encuestas). A diferencia de Reportes, esta capa sí escribe.
type Gestion struct {
	cliente *Cliente
}

// NewGestion crea la capa de gestión sobre un cliente abierto.
func NewGestion(cliente *Cliente) *Gestion {
	return &Gestion{cliente: cliente}
}

type filaPermisos struct {
	EmailLogin                bigquery.NullString `bigquery:"email_login"`
	NombreCompleto            bigquery.NullString `bigquery:"nombre_completo"`
	ClienteRol                bigquery.NullString `bigquery:"cliente_rol"`
	RolID                     bigquery.NullString `bigquery:"rol_id"`
	NombreRol                 bigquery.NullString `bigquery:"nombre_rol"`
	PuedeVerCobertura         bigquery.NullBool   `bigquery:"puede_ver_cobertura"`
	PuedeVerEncuestas         bigquery.NullBool   `bigquery:"puede_ver_encuestas"`
	PuedeEnviarMensajes       bigquery.NullBool   `bigquery:"puede_enviar_mensajes"`
	PuedeVerMensajesRecibidos bigquery.NullBool   `bigquery:"puede_ver_mensajes_recibidos"`
	EsAdmin                   bigquery.NullBool   `bigquery:"es_admin"`
	VerTodasInstalaciones     bigquery.NullBool   `bigquery:"ver_todas_instalaciones"`
	UsuarioActivo             bigquery.NullBool   `bigquery:"usuario_activo"`
}

// UsuarioPorEmail busca la identidad y sus permisos en la vista de permisos.
func (g *Gestion) UsuarioPorEmail(ctx context.Context, email string) (*models.Usuario, error) {
	sql := fmt.Sprintf(`
		SELECT
		  email_login,
		  nombre_completo,
		  cliente_rol,
		  rol_id,
		  nombre_rol,
		  puede_ver_cobertura,
		  puede_ver_encuestas,
		  puede_enviar_mensajes,
		  puede_ver_mensajes_recibidos,
		  es_admin,
		  ver_todas_instalaciones,
		  usuario_activo
		FROM %s
		WHERE email_login = @email
		LIMIT 1
	`, "`"+g.cliente.cfg.VistaPermisos()+"`")

	it, err := g.cliente.consultar(ctx, sql, []bigquery.QueryParameter{
		{Name: "email", Value: email},
	})
	if err != nil {
		return nil, err
	}

	var fila filaPermisos
	if err := it.Next(&fila); err != nil {
		if errors.Is(err, iterator.Done) {
			return nil, fmt.Errorf("%w: usuario %s", ErrNoEncontrado, email)
		}
		return nil, clasificarError(err)
	}

	return &models.Usuario{
		Email:          fila.EmailLogin.StringVal,
		NombreCompleto: fila.NombreCompleto.StringVal,
		ClienteRol:     fila.ClienteRol.StringVal,
		RolID:          fila.RolID.StringVal,
		NombreRol:      fila.NombreRol.StringVal,
		Activo:         fila.UsuarioActivo.Valid && fila.UsuarioActivo.Bool,
		Permisos: models.Permisos{
			PuedeVerCobertura:         fila.PuedeVerCobertura.Valid && fila.PuedeVerCobertura.Bool,
			PuedeVerEncuestas:         fila.PuedeVerEncuestas.Valid && fila.PuedeVerEncuestas.Bool,
			PuedeEnviarMensajes:       fila.PuedeEnviarMensajes.Valid && fila.PuedeEnviarMensajes.Bool,
			PuedeVerMensajesRecibidos: fila.PuedeVerMensajesRecibidos.Valid && fila.PuedeVerMensajesRecibidos.Bool,
			EsAdmin:                   fila.EsAdmin.Valid && fila.EsAdmin.Bool,
			VerTodasInstalaciones:     fila.VerTodasInstalaciones.Valid && fila.VerTodasInstalaciones.Bool,
		},
	}, nil
}

// ActualizarFirebaseUID sincroniza el UID de Firebase cuando cambia (el
// usuario pudo haberse recreado en la consola).
func (g *Gestion) ActualizarFirebaseUID(ctx context.Context, email, uid string) error {
	sql := fmt.Sprintf(`
		UPDATE %s
		SET firebase_uid = @uid
		WHERE email_login = @email
		  AND (firebase_uid IS NULL OR firebase_uid != @uid)
	`, "`"+g.cliente.cfg.TablaUsuarios()+"`")

	return g.cliente.ejecutar(ctx, sql, []bigquery.QueryParameter{
		{Name: "uid", Value: uid},
		{Name: "email", Value: email},
	})
}

// InstalacionesVisibles retorna las instalaciones con puede_ver del usuario.
// Es la fuente de permisos que consume el motor de cobertura.
func (g *Gestion) InstalacionesVisibles(ctx context.Context, email string) ([]string, error) {
	sql := fmt.Sprintf(`
		SELECT DISTINCT instalacion_rol
		FROM %s
		WHERE email_login = @email
		  AND puede_ver = TRUE
		ORDER BY instalacion_rol
	`, "`"+g.cliente.cfg.TablaUsuarioInstalaciones()+"`")

	it, err := g.cliente.consultar(ctx, sql, []bigquery.QueryParameter{
		{Name: "email", Value: email},
	})
	if err != nil {
		return nil, err
	}

	var instalaciones []string
	for {
		var fila struct {
			InstalacionRol string `bigquery:"instalacion_rol"`
		}
		err := it.Next(&fila)
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, clasificarError(err)
		}
		instalaciones = append(instalaciones, fila.InstalacionRol)
	}
	return instalaciones, nil
}

// PuedeVerInstalacion verifica el acceso puntual a una instalación.
func (g *Gestion) PuedeVerInstalacion(ctx context.Context, email, instalacionRol string) (bool, error) {
	sql := fmt.Sprintf(`
		SELECT COUNT(*) AS visibles
		FROM %s
		WHERE email_login = @email
		  AND instalacion_rol = @instalacion
		  AND puede_ver = TRUE
	`, "`"+g.cliente.cfg.TablaUsuarioInstalaciones()+"`")

	it, err := g.cliente.consultar(ctx, sql, []bigquery.QueryParameter{
		{Name: "email", Value: email},
		{Name: "instalacion", Value: instalacionRol},
	})
	if err != nil {
		return false, err
	}

	var fila struct {
		Visibles int64 `bigquery:"visibles"`
	}
	if err := it.Next(&fila); err != nil {
		return false, clasificarError(err)
	}
	return fila.Visibles > 0, nil
}

// ActualizarTokenFCM guarda el token de notificaciones push y marca la sesión.
func (g *Gestion) ActualizarTokenFCM(ctx context.Context, email, token string) error {
	sql := fmt.Sprintf(`
		UPDATE %s
		SET fcm_token = @token,
		    ultima_sesion = CURRENT_TIMESTAMP()
		WHERE email_login = @email
	`, "`"+g.cliente.cfg.TablaUsuarios()+"`")

	return g.cliente.ejecutar(ctx, sql, []bigquery.QueryParameter{
		{Name: "token", Value: token},
		{Name: "email", Value: email},
	})
}

type filaContacto struct {
	ContactoID bigquery.NullString `bigquery:"contacto_id"`
	Nombre     bigquery.NullString `bigquery:"nombre_contacto"`
	Telefono   bigquery.NullString `bigquery:"telefono"`
	Cargo      bigquery.NullString `bigquery:"cargo"`
	Email      bigquery.NullString `bigquery:"email"`
}

func (f *filaContacto) aModelo() models.Contacto {
	return models.Contacto{
		ContactoID: f.ContactoID.StringVal,
		Nombre:     f.Nombre.StringVal,
		Telefono:   f.Telefono.StringVal,
		Cargo:      f.Cargo.StringVal,
		Email:      f.Email.StringVal,
	}
}

// ContactosInstalacion trae los contactos activos de una instalación visible
// para el usuario.
func (g *Gestion) ContactosInstalacion(ctx context.Context, email, instalacionRol string) ([]models.Contacto, error) {
	sql := fmt.Sprintf(`
		SELECT
		  c.contacto_id,
		  c.nombre_contacto,
		  c.telefono,
		  c.cargo,
		  c.email
		FROM %s ui
		INNER JOIN %s ic
		  ON ui.cliente_rol = ic.cliente_rol
		  AND ui.instalacion_rol = ic.instalacion_rol
		INNER JOIN %s c ON ic.contacto_id = c.contacto_id
		WHERE ui.email_login = @email
		  AND ui.puede_ver = TRUE
		  AND ui.instalacion_rol = @instalacion
		  AND c.activo = TRUE
		ORDER BY c.nombre_contacto
	`,
		"`"+g.cliente.cfg.TablaUsuarioInstalaciones()+"`",
		"`"+g.cliente.cfg.TablaInstalacionContacto()+"`",
		"`"+g.cliente.cfg.TablaContactos()+"`",
	)

	return g.leerContactos(ctx, sql, []bigquery.QueryParameter{
		{Name: "email", Value: email},
		{Name: "instalacion", Value: instalacionRol},
	})
}

// ContactosContactables trae los contactos a los que el usuario puede enviar
// mensajes en una instalación (puede_contactar, distinto de puede_ver).
func (g *Gestion) ContactosContactables(ctx context.Context, email, instalacionRol string) ([]models.Contacto, error) {
	sql := fmt.Sprintf(`
		SELECT DISTINCT
		  c.contacto_id,
		  c.nombre_contacto,
		  c.telefono,
		  c.cargo,
		  c.email
		FROM %s c
		INNER JOIN %s uc
		  ON c.contacto_id = uc.contacto_id
		WHERE uc.email_login = @email
		  AND uc.instalacion_rol = @instalacion
		  AND uc.puede_contactar = TRUE
		  AND c.activo = TRUE
	`,
		"`"+g.cliente.cfg.TablaContactos()+"`",
		"`"+g.cliente.cfg.TablaUsuarioContactos()+"`",
	)

	return g.leerContactos(ctx, sql, []bigquery.QueryParameter{
		{Name: "email", Value: email},
		{Name: "instalacion", Value: instalacionRol},
	})
}

func (g *Gestion) leerContactos(ctx context.Context, sql string, params []bigquery.QueryParameter) ([]models.Contacto, error) {
	it, err := g.cliente.consultar(ctx, sql, params)
	if err != nil {
		return nil, err
	}

	var contactos []models.Contacto
	for {
		var fila filaContacto
		err := it.Next(&fila)
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, clasificarError(err)
		}
		contactos = append(contactos, fila.aModelo())
	}
	return contactos, nil
}

// RegistrarMensaje inserta el mensaje con estado pendiente; el despacho real
// a WhatsApp corre por un proceso aparte que consume esta tabla.
func (g *Gestion) RegistrarMensaje(ctx context.Context, m models.MensajeWhatsapp) error {
	sql := fmt.Sprintf(`
		INSERT INTO %s
		  (mensaje_id, email_usuario, cliente_rol, instalacion_rol, contacto_id, mensaje, estado, fecha_envio)
		VALUES
		  (@mensaje_id, @email_usuario, @cliente_rol, @instalacion_rol, @contacto_id, @mensaje, @estado, CURRENT_TIMESTAMP())
	`, "`"+g.cliente.cfg.TablaMensajes()+"`")

	return g.cliente.ejecutar(ctx, sql, []bigquery.QueryParameter{
		{Name: "mensaje_id", Value: m.MensajeID},
		{Name: "email_usuario", Value: m.EmailUsuario},
		{Name: "cliente_rol", Value: m.ClienteRol},
		{Name: "instalacion_rol", Value: m.InstalacionRol},
		{Name: "contacto_id", Value: m.ContactoID},
		{Name: "mensaje", Value: m.Mensaje},
		{Name: "estado", Value: m.Estado},
	})
}

// MensajesRecibidos trae los últimos mensajes dirigidos al usuario.
func (g *Gestion) MensajesRecibidos(ctx context.Context, email string, limite int) ([]models.MensajeRecibido, error) {
	if limite <= 0 {
		limite = 100
	}

	sql := fmt.Sprintf(`
		SELECT
		  mensaje_id,
		  remitente_email,
		  remitente_nombre,
		  remitente_cliente,
		  instalacion_rol,
		  instalacion_direccion,
		  instalacion_comuna,
		  mensaje,
		  estado,
		  fecha_envio,
		  fecha_lectura,
		  leido
		FROM %s
		WHERE destinatario_email_app = @email
		ORDER BY fecha_envio DESC
		LIMIT @limite
	`, "`"+g.cliente.cfg.VistaMensajesRecibidos()+"`")

	it, err := g.cliente.consultar(ctx, sql, []bigquery.QueryParameter{
		{Name: "email", Value: email},
		{Name: "limite", Value: int64(limite)},
	})
	if err != nil {
		return nil, err
	}

	type filaMensaje struct {
		MensajeID            bigquery.NullString    `bigquery:"mensaje_id"`
		RemitenteEmail       bigquery.NullString    `bigquery:"remitente_email"`
		RemitenteNombre      bigquery.NullString    `bigquery:"remitente_nombre"`
		RemitenteCliente     bigquery.NullString    `bigquery:"remitente_cliente"`
		InstalacionRol       bigquery.NullString    `bigquery:"instalacion_rol"`
		InstalacionDireccion bigquery.NullString    `bigquery:"instalacion_direccion"`
		InstalacionComuna    bigquery.NullString    `bigquery:"instalacion_comuna"`
		Mensaje              bigquery.NullString    `bigquery:"mensaje"`
		Estado               bigquery.NullString    `bigquery:"estado"`
		FechaEnvio           bigquery.NullTimestamp `bigquery:"fecha_envio"`
		FechaLectura         bigquery.NullTimestamp `bigquery:"fecha_lectura"`
		Leido                bigquery.NullBool      `bigquery:"leido"`
	}

	var mensajes []models.MensajeRecibido
	for {
		var fila filaMensaje
		err := it.Next(&fila)
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, clasificarError(err)
		}

		m := models.MensajeRecibido{
			MensajeID:            fila.MensajeID.StringVal,
			RemitenteEmail:       fila.RemitenteEmail.StringVal,
			RemitenteNombre:      fila.RemitenteNombre.StringVal,
			RemitenteCliente:     fila.RemitenteCliente.StringVal,
			InstalacionRol:       fila.InstalacionRol.StringVal,
			InstalacionDireccion: fila.InstalacionDireccion.StringVal,
			InstalacionComuna:    fila.InstalacionComuna.StringVal,
			Mensaje:              fila.Mensaje.StringVal,
			Estado:               fila.Estado.StringVal,
			Leido:                fila.Leido.Valid && fila.Leido.Bool,
		}
		if fila.FechaEnvio.Valid {
			m.FechaEnvio = fila.FechaEnvio.Timestamp
		}
		if fila.FechaLectura.Valid {
			lectura := fila.FechaLectura.Timestamp
			m.FechaLectura = &lectura
		}
		mensajes = append(mensajes, m)
	}
	return mensajes, nil
}

type filaUsuarioMensajeria struct {
	EmailLogin     bigquery.NullString `bigquery:"email_login"`
	FirebaseUID    bigquery.NullString `bigquery:"firebase_uid"`
	NombreCompleto bigquery.NullString `bigquery:"nombre_completo"`
	RolID          bigquery.NullString `bigquery:"rol_id"`
	ClienteRol     bigquery.NullString `bigquery:"cliente_rol"`
}

// ContactosDeUsuario retorna los clientes que comparten instalaciones con el
// usuario, para el módulo de chat.
func (g *Gestion) ContactosDeUsuario(ctx context.Context, email string) ([]models.UsuarioMensajeria, error) {
	sql := fmt.Sprintf(`
		WITH instalaciones_usuario AS (
		  SELECT DISTINCT instalacion_rol
		  FROM %s
		  WHERE email_login = @email
		)
		SELECT DISTINCT
		  u.email_login,
		  u.firebase_uid,
		  u.nombre_completo,
		  u.rol_id,
		  u.cliente_rol
		FROM instalaciones_usuario iu
		JOIN %s ui ON iu.instalacion_rol = ui.instalacion_rol
		JOIN %s u ON ui.email_login = u.email_login
		WHERE u.rol_id = 'CLIENTE'
		  AND u.usuario_activo = TRUE
		  AND u.email_login != @email
		ORDER BY u.nombre_completo
	`,
		"`"+g.cliente.cfg.TablaUsuarioInstalaciones()+"`",
		"`"+g.cliente.cfg.TablaUsuarioInstalaciones()+"`",
		"`"+g.cliente.cfg.VistaPermisos()+"`",
	)

	return g.leerUsuariosMensajeria(ctx, sql, []bigquery.QueryParameter{
		{Name: "email", Value: email},
	})
}

// UsuariosWFSAInstalacion retorna los usuarios de la operación asignados a
// una instalación, para el módulo de chat.
func (g *Gestion) UsuariosWFSAInstalacion(ctx context.Context, instalacionRol string) ([]models.UsuarioMensajeria, error) {
	sql := fmt.Sprintf(`
		SELECT DISTINCT
		  u.email_login,
		  u.firebase_uid,
		  u.nombre_completo,
		  u.rol_id,
		  u.cliente_rol
		FROM %s ic
		JOIN %s uc
		  ON ic.contacto_id = uc.contacto_id
		  AND ic.instalacion_rol = uc.instalacion_rol
		JOIN %s u ON uc.email_login = u.email_login
		WHERE ic.instalacion_rol = @instalacion
		  AND u.rol_id != 'CLIENTE'
		  AND u.usuario_activo = TRUE
		ORDER BY u.nombre_completo
	`,
		"`"+g.cliente.cfg.TablaInstalacionContacto()+"`",
		"`"+g.cliente.cfg.TablaUsuarioContactos()+"`",
		"`"+g.cliente.cfg.VistaPermisos()+"`",
	)

	return g.leerUsuariosMensajeria(ctx, sql, []bigquery.QueryParameter{
		{Name: "instalacion", Value: instalacionRol},
	})
}

func (g *Gestion) leerUsuariosMensajeria(ctx context.Context, sql string, params []bigquery.QueryParameter) ([]models.UsuarioMensajeria, error) {
	it, err := g.cliente.consultar(ctx, sql, params)
	if err != nil {
		return nil, err
	}

	var usuarios []models.UsuarioMensajeria
	for {
		var fila filaUsuarioMensajeria
		err := it.Next(&fila)
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, clasificarError(err)
		}
		usuarios = append(usuarios, models.UsuarioMensajeria{
			EmailLogin:     fila.EmailLogin.StringVal,
			FirebaseUID:    fila.FirebaseUID.StringVal,
			NombreCompleto: fila.NombreCompleto.StringVal,
			RolID:          fila.RolID.StringVal,
			ClienteRol:     fila.ClienteRol.StringVal,
		})
	}
	return usuarios, nil
}

type filaEncuesta struct {
	EncuestaID          bigquery.NullString    `bigquery:"encuesta_id"`
	Periodo             bigquery.NullString    `bigquery:"periodo"`
	ClienteRol          bigquery.NullString    `bigquery:"cliente_rol"`
	InstalacionRol      bigquery.NullString    `bigquery:"instalacion_rol"`
	Modo                bigquery.NullString    `bigquery:"modo"`
	EmailDestinatario   bigquery.NullString    `bigquery:"email_destinatario"`
	Estado              bigquery.NullString    `bigquery:"estado"`
	FechaCreacion       bigquery.NullTimestamp `bigquery:"fecha_creacion"`
	FechaLimite         bigquery.NullTimestamp `bigquery:"fecha_limite"`
	RespondidoPorEmail  bigquery.NullString    `bigquery:"respondido_por_email"`
	RespondidoPorNombre bigquery.NullString    `bigquery:"respondido_por_nombre"`
	TipoRespuesta       bigquery.NullString    `bigquery:"tipo_respuesta"`
	FechaRespuesta      bigquery.NullTimestamp `bigquery:"fecha_respuesta"`
}

func (f *filaEncuesta) aModelo() models.EncuestaSolicitud {
	e := models.EncuestaSolicitud{
		EncuestaID:          f.EncuestaID.StringVal,
		Periodo:             f.Periodo.StringVal,
		ClienteRol:          f.ClienteRol.StringVal,
		InstalacionRol:      f.InstalacionRol.StringVal,
		Modo:                f.Modo.StringVal,
		EmailDestinatario:   f.EmailDestinatario.StringVal,
		Estado:              f.Estado.StringVal,
		RespondidoPorEmail:  f.RespondidoPorEmail.StringVal,
		RespondidoPorNombre: f.RespondidoPorNombre.StringVal,
		TipoRespuesta:       f.TipoRespuesta.StringVal,
	}
	if f.FechaCreacion.Valid {
		e.FechaCreacion = f.FechaCreacion.Timestamp
	}
	if f.FechaLimite.Valid {
		e.FechaLimite = f.FechaLimite.Timestamp
	}
	if f.FechaRespuesta.Valid {
		respuesta := f.FechaRespuesta.Timestamp
		e.FechaRespuesta = &respuesta
	}
	return e
}

const columnasEncuesta = `
	  s.encuesta_id,
	  s.periodo,
	  s.cliente_rol,
	  s.instalacion_rol,
	  s.modo,
	  s.email_destinatario,
	  s.estado,
	  s.fecha_creacion,
	  s.fecha_limite,
	  s.respondido_por_email,
	  s.respondido_por_nombre,
	  s.tipo_respuesta,
	  s.fecha_respuesta`

// EncuestasDeUsuario trae las solicitudes de los períodos indicados en las
// instalaciones visibles del usuario. Con soloPropias, las individuales se
// restringen a las dirigidas al usuario (regla de rol CLIENTE).
func (g *Gestion) EncuestasDeUsuario(ctx context.Context, email string, periodos []string, soloPropias bool) ([]models.EncuestaSolicitud, error) {
	filtroModo := ""
	if soloPropias {
		filtroModo = `
		  AND (s.modo = 'compartida'
		       OR (s.modo = 'individual' AND s.email_destinatario = @email))`
	}

	sql := fmt.Sprintf(`
		WITH mis_instalaciones AS (
		  SELECT DISTINCT cliente_rol, instalacion_rol
		  FROM %s
		  WHERE email_login = @email
		    AND puede_ver = TRUE
		)
		SELECT %s
		FROM %s s
		INNER JOIN mis_instalaciones mi
		  ON s.cliente_rol = mi.cliente_rol
		  AND s.instalacion_rol = mi.instalacion_rol
		WHERE s.periodo IN UNNEST(@periodos)%s
		ORDER BY s.instalacion_rol, s.modo, s.fecha_creacion DESC
	`,
		"`"+g.cliente.cfg.TablaUsuarioInstalaciones()+"`",
		columnasEncuesta,
		"`"+g.cliente.cfg.TablaEncuestasSolicitudes()+"`",
		filtroModo,
	)

	it, err := g.cliente.consultar(ctx, sql, []bigquery.QueryParameter{
		{Name: "email", Value: email},
		{Name: "periodos", Value: noNil(periodos)},
	})
	if err != nil {
		return nil, err
	}

	var encuestas []models.EncuestaSolicitud
	for {
		var fila filaEncuesta
		err := it.Next(&fila)
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, clasificarError(err)
		}
		encuestas = append(encuestas, fila.aModelo())
	}
	return encuestas, nil
}

// EncuestaPorID busca una solicitud puntual.
func (g *Gestion) EncuestaPorID(ctx context.Context, encuestaID string) (*models.EncuestaSolicitud, error) {
	sql := fmt.Sprintf(`
		SELECT %s
		FROM %s s
		WHERE s.encuesta_id = @encuesta_id
		LIMIT 1
	`, columnasEncuesta, "`"+g.cliente.cfg.TablaEncuestasSolicitudes()+"`")

	it, err := g.cliente.consultar(ctx, sql, []bigquery.QueryParameter{
		{Name: "encuesta_id", Value: encuestaID},
	})
	if err != nil {
		return nil, err
	}

	var fila filaEncuesta
	if err := it.Next(&fila); err != nil {
		if errors.Is(err, iterator.Done) {
			return nil, fmt.Errorf("%w: encuesta %s", ErrNoEncontrado, encuestaID)
		}
		return nil, clasificarError(err)
	}
	encuesta := fila.aModelo()
	return &encuesta, nil
}

// PreguntasActivas trae el cuestionario vigente en orden.
func (g *Gestion) PreguntasActivas(ctx context.Context) ([]models.EncuestaPregunta, error) {
	sql := fmt.Sprintf(`
		SELECT
		  pregunta_id,
		  orden,
		  texto_pregunta,
		  tipo_respuesta,
		  requiere_comentario,
		  obligatoria,
		  categoria
		FROM %s
		WHERE activa = TRUE
		ORDER BY orden ASC
	`, "`"+g.cliente.cfg.TablaEncuestasPreguntas()+"`")

	it, err := g.cliente.consultar(ctx, sql, nil)
	if err != nil {
		return nil, err
	}

	type filaPregunta struct {
		PreguntaID         bigquery.NullString `bigquery:"pregunta_id"`
		Orden              int64               `bigquery:"orden"`
		TextoPregunta      bigquery.NullString `bigquery:"texto_pregunta"`
		TipoRespuesta      bigquery.NullString `bigquery:"tipo_respuesta"`
		RequiereComentario bigquery.NullBool   `bigquery:"requiere_comentario"`
		Obligatoria        bigquery.NullBool   `bigquery:"obligatoria"`
		Categoria          bigquery.NullString `bigquery:"categoria"`
	}

	var preguntas []models.EncuestaPregunta
	for {
		var fila filaPregunta
		err := it.Next(&fila)
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, clasificarError(err)
		}
		preguntas = append(preguntas, models.EncuestaPregunta{
			PreguntaID:         fila.PreguntaID.StringVal,
			Orden:              int(fila.Orden),
			TextoPregunta:      fila.TextoPregunta.StringVal,
			TipoRespuesta:      fila.TipoRespuesta.StringVal,
			RequiereComentario: fila.RequiereComentario.Valid && fila.RequiereComentario.Bool,
			Obligatoria:        fila.Obligatoria.Valid && fila.Obligatoria.Bool,
			Categoria:          fila.Categoria.StringVal,
		})
	}
	return preguntas, nil
}

// filaRespuestaInsert es la forma de inserción streaming de una respuesta.
type filaRespuestaInsert struct {
	RespuestaID         string    `bigquery:"respuesta_id"`
	EncuestaID          string    `bigquery:"encuesta_id"`
	PreguntaID          string    `bigquery:"pregunta_id"`
	RespuestaValor      string    `bigquery:"respuesta_valor"`
	ComentarioAdicional string    `bigquery:"comentario_adicional"`
	FechaRespuesta      time.Time `bigquery:"fecha_respuesta"`
}

// GuardarRespuestas inserta las respuestas vía streaming.
func (g *Gestion) GuardarRespuestas(ctx context.Context, respuestas []models.EncuestaRespuesta) error {
	filas := make([]*filaRespuestaInsert, 0, len(respuestas))
	for _, r := range respuestas {
		filas = append(filas, &filaRespuestaInsert{
			RespuestaID:         r.RespuestaID,
			EncuestaID:          r.EncuestaID,
			PreguntaID:          r.PreguntaID,
			RespuestaValor:      r.RespuestaValor,
			ComentarioAdicional: r.Comentario,
			FechaRespuesta:      r.FechaRespuesta,
		})
	}
	return g.cliente.insertar(ctx, g.cliente.cfg.DatasetApp, "encuestas_respuestas", filas)
}

// MarcarCompletada cierra la solicitud si sigue pendiente. La condición sobre
// el estado evita una doble respuesta en carrera.
func (g *Gestion) MarcarCompletada(ctx context.Context, encuestaID, email, nombre, tipoRespuesta string) error {
	sql := fmt.Sprintf(`
		UPDATE %s
		SET estado = 'completada',
		    respondido_por_email = @email,
		    respondido_por_nombre = @nombre,
		    tipo_respuesta = @tipo,
		    fecha_respuesta = CURRENT_TIMESTAMP()
		WHERE encuesta_id = @encuesta_id
		  AND estado = 'pendiente'
	`, "`"+g.cliente.cfg.TablaEncuestasSolicitudes()+"`")

	return g.cliente.ejecutar(ctx, sql, []bigquery.QueryParameter{
		{Name: "encuesta_id", Value: encuestaID},
		{Name: "email", Value: email},
		{Name: "nombre", Value: nombre},
		{Name: "tipo", Value: tipoRespuesta},
	})
}

// RespuestasDeEncuesta trae las respuestas con su pregunta, en orden.
func (g *Gestion) RespuestasDeEncuesta(ctx context.Context, encuestaID string) ([]models.EncuestaRespuesta, error) {
	sql := fmt.Sprintf(`
		SELECT
		  r.respuesta_id,
		  r.pregunta_id,
		  r.respuesta_valor,
		  r.comentario_adicional,
		  r.fecha_respuesta,
		  p.texto_pregunta,
		  p.tipo_respuesta,
		  p.orden
		FROM %s r
		INNER JOIN %s p ON r.pregunta_id = p.pregunta_id
		WHERE r.encuesta_id = @encuesta_id
		ORDER BY p.orden ASC
	`,
		"`"+g.cliente.cfg.TablaEncuestasRespuestas()+"`",
		"`"+g.cliente.cfg.TablaEncuestasPreguntas()+"`",
	)

	it, err := g.cliente.consultar(ctx, sql, []bigquery.QueryParameter{
		{Name: "encuesta_id", Value: encuestaID},
	})
	if err != nil {
		return nil, err
	}

	type filaRespuesta struct {
		RespuestaID         bigquery.NullString    `bigquery:"respuesta_id"`
		PreguntaID          bigquery.NullString    `bigquery:"pregunta_id"`
		RespuestaValor      bigquery.NullString    `bigquery:"respuesta_valor"`
		ComentarioAdicional bigquery.NullString    `bigquery:"comentario_adicional"`
		FechaRespuesta      bigquery.NullTimestamp `bigquery:"fecha_respuesta"`
		TextoPregunta       bigquery.NullString    `bigquery:"texto_pregunta"`
		TipoRespuesta       bigquery.NullString    `bigquery:"tipo_respuesta"`
		Orden               int64                  `bigquery:"orden"`
	}

	var respuestas []models.EncuestaRespuesta
	for {
		var fila filaRespuesta
		err := it.Next(&fila)
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, clasificarError(err)
		}

		r := models.EncuestaRespuesta{
			RespuestaID:    fila.RespuestaID.StringVal,
			EncuestaID:     encuestaID,
			PreguntaID:     fila.PreguntaID.StringVal,
			RespuestaValor: fila.RespuestaValor.StringVal,
			Comentario:     fila.ComentarioAdicional.StringVal,
			TextoPregunta:  fila.TextoPregunta.StringVal,
			TipoRespuesta:  fila.TipoRespuesta.StringVal,
			Orden:          int(fila.Orden),
		}
		if fila.FechaRespuesta.Valid {
			r.FechaRespuesta = fila.FechaRespuesta.Timestamp
		}
		respuestas = append(respuestas, r)
	}
	return respuestas, nil
}
