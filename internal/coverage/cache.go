package coverage

import (
	"container/list"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// ClaseEntrada distingue la política de expiración de una entrada.
type ClaseEntrada int

const (
	// ClaseInstantanea expira al mínimo entre el TTL configurado y el próximo
	// límite de refresco del warehouse.
	ClaseInstantanea ClaseEntrada = iota
	// ClaseHistorica cubre semanas cerradas: el origen no las vuelve a tocar,
	// así que solo la invalidación explícita (o la presión LRU) las saca.
	ClaseHistorica
)

type entradaCache struct {
	clave     string
	clase     ClaseEntrada
	valor     interface{}
	frescura  time.Time
	expira    time.Time
	sinExpira bool
}

// CacheCobertura memoiza resultados de fetch+clasificación con colapso
// single-flight por clave: N llamadas concurrentes sin entrada disparan
// exactamente un cómputo y todas reciben su resultado (o su error; los
// errores nunca se almacenan).
//
// El cómputo corre sobre el contexto del llamador que lo inició: si ese
// llamador cancela o agota su timeout, los demás suscritos a la misma clave
// observan la misma cancelación. No hay reintento de respaldo silencioso.
//
// La eliminación por capacidad es LRU. Es el único recurso mutable compartido
// del motor; toda mutación es atómica respecto de los lectores.
type CacheCobertura struct {
	ttl       time.Duration
	cadencia  time.Duration
	capacidad int
	ahora     func() time.Time

	mu          sync.Mutex
	elementos   map[string]*list.Element
	lru         *list.List
	frescuraMax time.Time

	grupo singleflight.Group
}

// NewCacheCobertura crea el cache. `reloj` permite inyectar un reloj
// determinista en tests; nil usa time.Now.
func NewCacheCobertura(ttl, cadencia time.Duration, capacidad int, reloj func() time.Time) *CacheCobertura {
	if ttl <= 0 {
		ttl = time.Minute
	}
	if cadencia <= 0 {
		cadencia = 5 * time.Minute
	}
	if capacidad <= 0 {
		capacidad = 512
	}
	if reloj == nil {
		reloj = time.Now
	}
	return &CacheCobertura{
		ttl:       ttl,
		cadencia:  cadencia,
		capacidad: capacidad,
		ahora:     reloj,
		elementos: make(map[string]*list.Element),
		lru:       list.New(),
	}
}

// Clave construye la clave canónica de una operación: tipo de consulta,
// huella del ámbito de acceso y parámetros, en ese orden.
func Clave(operacion, huella string, params ...string) string {
	datos := operacion + "|" + huella
	if len(params) > 0 {
		datos += "|" + strings.Join(params, "|")
	}
	hash := sha256.Sum256([]byte(datos))
	return hex.EncodeToString(hash[:16])
}

// LimiteRefresco es el inicio del ciclo de refresco vigente del warehouse,
// en función del reloj y la cadencia configurada. Una entrada cuya frescura
// quede a más de un ciclo de este límite no se sirve jamás.
func (c *CacheCobertura) LimiteRefresco() time.Time {
	return c.ahora().Truncate(c.cadencia)
}

// Calculo es el resultado de un cómputo cacheable: el valor más la marca de
// frescura de los datos de origen con que se calculó.
type Calculo struct {
	Valor    interface{}
	Frescura time.Time
}

// Obtener busca la clave y, en caso de miss, ejecuta `calcular` bajo
// single-flight y almacena el resultado. Retorna además si fue hit.
func (c *CacheCobertura) Obtener(
	ctx context.Context,
	clave string,
	clase ClaseEntrada,
	calcular func(ctx context.Context) (*Calculo, error),
) (interface{}, bool, error) {
	if valor, ok := c.buscar(clave); ok {
		return valor, true, nil
	}

	tipo := "calculado"
	resultado, err, _ := c.grupo.Do(clave, func() (interface{}, error) {
		// Doble verificación: otro vuelo pudo haber poblado la clave
		// mientras esperábamos el turno del grupo.
		if valor, ok := c.buscar(clave); ok {
			tipo = "hit"
			return valor, nil
		}

		calculo, err := calcular(ctx)
		if err != nil {
			return nil, err
		}
		c.almacenar(clave, clase, calculo)
		return calculo.Valor, nil
	})
	if err != nil {
		return nil, false, err
	}
	return resultado, tipo == "hit", nil
}

// buscar retorna el valor si la entrada existe, no expiró y su frescura sigue
// dentro del ciclo de refresco tolerado.
func (c *CacheCobertura) buscar(clave string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elemento, ok := c.elementos[clave]
	if !ok {
		return nil, false
	}
	entrada := elemento.Value.(*entradaCache)

	ahora := c.ahora()
	if !entrada.sinExpira && ahora.After(entrada.expira) {
		c.eliminarElemento(elemento)
		return nil, false
	}

	// Invariante de frescura: datos con marca anterior al ciclo de refresco
	// previo están a más de un ciclo del presente observable y fuerzan refetch.
	if entrada.clase == ClaseInstantanea {
		limite := ahora.Truncate(c.cadencia).Add(-c.cadencia)
		if entrada.frescura.Before(limite) {
			c.eliminarElemento(elemento)
			return nil, false
		}
	}

	c.lru.MoveToBack(elemento)
	return entrada.valor, true
}

func (c *CacheCobertura) almacenar(clave string, clase ClaseEntrada, calculo *Calculo) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ahora := c.ahora()

	// Invalidación gruesa: si el fetch trajo datos más frescos que todo lo
	// almacenado, el warehouse completó un ciclo y las entradas instantáneas
	// previas quedaron detrás. Es más barato descartarlas todas que rastrear
	// dependencias finas entre claves.
	if calculo.Frescura.After(c.frescuraMax) {
		if !c.frescuraMax.IsZero() {
			c.invalidarClase(ClaseInstantanea)
		}
		c.frescuraMax = calculo.Frescura
	}

	entrada := &entradaCache{
		clave:    clave,
		clase:    clase,
		valor:    calculo.Valor,
		frescura: calculo.Frescura,
	}

	switch clase {
	case ClaseInstantanea:
		proximoLimite := ahora.Truncate(c.cadencia).Add(c.cadencia)
		expiraTTL := ahora.Add(c.ttl)
		if proximoLimite.Before(expiraTTL) {
			entrada.expira = proximoLimite
		} else {
			entrada.expira = expiraTTL
		}
	case ClaseHistorica:
		entrada.sinExpira = true
	}

	if elemento, ok := c.elementos[clave]; ok {
		elemento.Value = entrada
		c.lru.MoveToBack(elemento)
		return
	}

	for len(c.elementos) >= c.capacidad {
		masAntiguo := c.lru.Front()
		if masAntiguo == nil {
			break
		}
		c.eliminarElemento(masAntiguo)
	}

	c.elementos[clave] = c.lru.PushBack(entrada)
}

// Invalidar vacía el cache por completo (invalidación administrativa).
func (c *CacheCobertura) Invalidar() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.elementos = make(map[string]*list.Element)
	c.lru.Init()
	c.frescuraMax = time.Time{}
}

// InvalidarInstantaneas descarta solo las entradas atadas al ciclo de refresco.
func (c *CacheCobertura) InvalidarInstantaneas() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidarClase(ClaseInstantanea)
}

func (c *CacheCobertura) invalidarClase(clase ClaseEntrada) {
	var siguiente *list.Element
	for elemento := c.lru.Front(); elemento != nil; elemento = siguiente {
		siguiente = elemento.Next()
		if elemento.Value.(*entradaCache).clase == clase {
			c.eliminarElemento(elemento)
		}
	}
}

func (c *CacheCobertura) eliminarElemento(elemento *list.Element) {
	entrada := elemento.Value.(*entradaCache)
	delete(c.elementos, entrada.clave)
	c.lru.Remove(elemento)
}

// Tamano retorna la cantidad de entradas vigentes.
func (c *CacheCobertura) Tamano() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.elementos)
}
