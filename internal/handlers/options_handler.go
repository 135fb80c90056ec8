package handlers

import (
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kavidoi/reservas-laberinto/internal/airtable"
)

// optionTable describes one dropdown source: which table, what to display,
// and how to filter it.
type optionTable struct {
	TableID            string
	DisplayField       string
	FilterField        string
	StatusField        string
	DefaultFilterValue string
	StatusFilterValue  string
	DetailFields       []string
}

// optionTables feeds the wizard dropdowns. Table IDs match the Airtable
// base this service is deployed against.
var optionTables = map[string]optionTable{
	"scheduled_events": {
		TableID:            "tblJ604IExFMU3KvW",
		DisplayField:       "Evento",
		FilterField:        "Modalidad",
		StatusField:        "Estado Evento",
		DefaultFilterValue: "Grupal",
		StatusFilterValue:  "futuro",
		DetailFields:       []string{"Fecha", "Hora Inicio", "Hora Término", "Descripción", "Precio"},
	},
	"experience_types": {
		TableID:            "tblaBc1QhlksnV5Qb",
		DisplayField:       "Experiencia",
		FilterField:        "Modalidad",
		DefaultFilterValue: "Grupal",
		DetailFields:       []string{"Descripción", "Precio", "Duración"},
	},
	"food": {
		TableID:      "tblz3fbgTFnqfCGi9",
		DisplayField: "Name",
	},
}

// optionsHandler serves the dropdown feed: records from one configured
// table, filtered and sorted, shaped for the wizard's select widgets.
func optionsHandler(cfg HandlerConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		tableType := c.Query("tableType")
		table, ok := optionTables[tableType]
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{
				"message": fmt.Sprintf("Bad Request: unknown tableType %q.", tableType),
			})
			return
		}

		fields := []string{table.DisplayField}
		fields = append(fields, table.DetailFields...)
		for _, extra := range []string{table.FilterField, table.StatusField} {
			if extra != "" && !contains(fields, extra) {
				fields = append(fields, extra)
			}
		}

		opts := airtable.ListOptions{
			Fields:          fields,
			FilterByFormula: buildFilter(table, c.Query("filterValue")),
			Sort:            []airtable.SortField{{Field: table.DisplayField, Direction: "asc"}},
			MaxRecords:      200,
		}

		records, err := cfg.Lister.ListRecords(c.Request.Context(), table.TableID, opts)
		if err != nil {
			log.Printf("[options] list %s failed: %v", tableType, err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"message": "Error al cargar las opciones.",
				"error":   errorDetail(cfg, err),
			})
			return
		}

		results := make([]gin.H, 0, len(records))
		for _, rec := range records {
			option := gin.H{"id": rec.ID}
			if text, ok := rec.Fields[table.DisplayField].(string); ok && text != "" {
				option["text"] = text
			} else {
				option["text"] = fmt.Sprintf("Unnamed (ID: %s)", rec.ID)
			}
			for _, f := range fields {
				if f == table.DisplayField {
					continue
				}
				if v, ok := rec.Fields[f]; ok {
					option[f] = v
				}
			}
			results = append(results, option)
		}

		c.JSON(http.StatusOK, gin.H{"results": results})
	}
}

func buildFilter(table optionTable, filterValue string) string {
	var parts []string
	effective := filterValue
	if effective == "" {
		effective = table.DefaultFilterValue
	}
	if table.FilterField != "" && effective != "" {
		parts = append(parts, fmt.Sprintf("{%s} = '%s'", table.FilterField, effective))
	}
	if table.StatusField != "" && table.StatusFilterValue != "" {
		parts = append(parts, fmt.Sprintf("{%s} = '%s'", table.StatusField, table.StatusFilterValue))
	}
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return parts[0]
	default:
		return fmt.Sprintf("AND(%s)", strings.Join(parts, ", "))
	}
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
