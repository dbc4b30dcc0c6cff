// Package rubric implements the document-photo scoring rubric for Fotocheck.
// It defines the rubric as configuration data (criteria, thresholds,
// corrective directives, and a notes vocabulary), normalizes model output
// into rubric results, and derives image-edit prompts from deficiencies.
package rubric

import "fmt"

// Criterion is a single scored rubric rule. A criterion whose score falls
// below Threshold (exclusive) contributes Directive to the derived fix list.
type Criterion struct {
	Name      string `toml:"name"`
	MaxScore  int    `toml:"max_score"`
	Threshold int    `toml:"threshold"`
	Directive string `toml:"directive"`
}

// KeywordRule maps a case-insensitive substring of evaluation notes to a
// corrective directive.
type KeywordRule struct {
	Keyword   string `toml:"keyword"`
	Directive string `toml:"directive"`
}

// Config holds the full rubric definition. It is loaded once at startup and
// passed by reference; rule changes never require touching orchestration code.
type Config struct {
	Criteria   []Criterion   `toml:"criteria"`
	Vocabulary []KeywordRule `toml:"vocabulary"`

	// Prompt is the default evaluation prompt sent alongside the photo.
	Prompt string `toml:"prompt"`
	// Preamble and Suffix frame the derived directive list in the edit prompt.
	Preamble string `toml:"preamble"`
	Suffix   string `toml:"suffix"`
	// Generic is the minimal-touch-up edit prompt used when no directive applies.
	Generic string `toml:"generic"`
}

// Finalize fills unset fields from the built-in rubric and validates the result.
func (c *Config) Finalize() error {
	def := Default()

	if len(c.Criteria) == 0 {
		c.Criteria = def.Criteria
	}
	if len(c.Vocabulary) == 0 {
		c.Vocabulary = def.Vocabulary
	}
	if c.Prompt == "" {
		c.Prompt = def.Prompt
	}
	if c.Preamble == "" {
		c.Preamble = def.Preamble
	}
	if c.Suffix == "" {
		c.Suffix = def.Suffix
	}
	if c.Generic == "" {
		c.Generic = def.Generic
	}

	return c.validate()
}

// Merge overwrites set fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if len(overlay.Criteria) > 0 {
		c.Criteria = overlay.Criteria
	}
	if len(overlay.Vocabulary) > 0 {
		c.Vocabulary = overlay.Vocabulary
	}
	if overlay.Prompt != "" {
		c.Prompt = overlay.Prompt
	}
	if overlay.Preamble != "" {
		c.Preamble = overlay.Preamble
	}
	if overlay.Suffix != "" {
		c.Suffix = overlay.Suffix
	}
	if overlay.Generic != "" {
		c.Generic = overlay.Generic
	}
}

// Known reports whether name is a member of the configured criteria set.
func (c *Config) Known(name string) bool {
	for _, criterion := range c.Criteria {
		if criterion.Name == name {
			return true
		}
	}
	return false
}

func (c *Config) validate() error {
	seen := make(map[string]bool, len(c.Criteria))
	for _, criterion := range c.Criteria {
		if criterion.Name == "" {
			return fmt.Errorf("criterion name required")
		}
		if seen[criterion.Name] {
			return fmt.Errorf("duplicate criterion: %s", criterion.Name)
		}
		seen[criterion.Name] = true

		if criterion.Threshold < 0 || criterion.Threshold > 100 {
			return fmt.Errorf("criterion %s: threshold out of range: %d", criterion.Name, criterion.Threshold)
		}
		if criterion.Directive == "" {
			return fmt.Errorf("criterion %s: directive required", criterion.Name)
		}
	}

	for _, rule := range c.Vocabulary {
		if rule.Keyword == "" || rule.Directive == "" {
			return fmt.Errorf("vocabulary rule requires keyword and directive")
		}
	}

	return nil
}

// Default returns the built-in document-photo rubric. Criterion order is the
// fixed priority order used to break score ties during derivation.
func Default() *Config {
	return &Config{
		Criteria: []Criterion{
			{
				Name:      "tamaño_3x4",
				MaxScore:  25,
				Threshold: 25,
				Directive: "Ajustar el recorte a proporción exacta 3:4 (ancho:alto) sin deformaciones.",
			},
			{
				Name:      "fondo_blanco",
				MaxScore:  25,
				Threshold: 25,
				Directive: "Uniformizar el fondo a blanco puro (#FFFFFF), sin texturas ni sombras.",
			},
			{
				Name:      "mirada_frontal_rostro_homogeneo",
				MaxScore:  20,
				Threshold: 20,
				Directive: "Mirada frontal con cabeza centrada, rostro totalmente visible e iluminación homogénea.",
			},
			{
				Name:      "sin_dientes_visibles",
				MaxScore:  10,
				Threshold: 10,
				Directive: "Cerrar los labios; sin dientes visibles.",
			},
			{
				Name:      "identificable_sin_obstrucciones",
				MaxScore:  20,
				Threshold: 20,
				Directive: "Eliminar obstrucciones (mascarillas, gafas de sol, viseras, sombras fuertes u objetos).",
			},
		},
		Vocabulary: []KeywordRule{
			{Keyword: "3x4", Directive: "Ajustar el recorte a proporción exacta 3:4 (ancho:alto) sin deformaciones."},
			{Keyword: "3:4", Directive: "Ajustar el recorte a proporción exacta 3:4 (ancho:alto) sin deformaciones."},
			{Keyword: "fondo", Directive: "Uniformizar el fondo a blanco puro (#FFFFFF), sin texturas ni sombras."},
			{Keyword: "sombra", Directive: "Eliminar sombras duras sobre el rostro y el fondo."},
			{Keyword: "mirada", Directive: "Mirada frontal con cabeza centrada, rostro totalmente visible e iluminación homogénea."},
			{Keyword: "frontal", Directive: "Mirada frontal con cabeza centrada, rostro totalmente visible e iluminación homogénea."},
			{Keyword: "rostro", Directive: "Mirada frontal con cabeza centrada, rostro totalmente visible e iluminación homogénea."},
			{Keyword: "diente", Directive: "Cerrar los labios; sin dientes visibles."},
			{Keyword: "obstru", Directive: "Eliminar obstrucciones (mascarillas, gafas de sol, viseras, sombras fuertes u objetos)."},
			{Keyword: "gafa", Directive: "Eliminar obstrucciones (mascarillas, gafas de sol, viseras, sombras fuertes u objetos)."},
			{Keyword: "mascar", Directive: "Eliminar obstrucciones (mascarillas, gafas de sol, viseras, sombras fuertes u objetos)."},
		},
		Prompt:   defaultPrompt,
		Preamble: "Edita la imagen para cumplir con las reglas de fotografía tipo documento. Aplica SOLO los cambios necesarios manteniendo la identidad. Cambios requeridos: ",
		Suffix:   ". Exporta con calidad fotográfica, sin texto sobreimpreso.",
		Generic:  "Mejorar sutilmente para cumplir estrictamente el rúbrico sin alterar la identidad.",
	}
}
