package console

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/APB2021/student_manager/elements/groups"
	"github.com/APB2021/student_manager/records"
	"github.com/APB2021/student_manager/store"
)

func (v *View) exportText(ctx context.Context) (bool, error) {
	var inputErr error
	count, err := v.records.ExportText(ctx, v.overwriteConfirmation(&inputErr))
	if inputErr != nil {
		return false, inputErr
	}
	switch {
	case err == nil:
		v.printf("✅ %d alumnos guardados correctamente en el fichero '%s'.\n", count, records.TextFileName)
		return true, nil
	case errors.Is(err, records.ErrOverwriteDeclined):
		v.println("Operación cancelada. El fichero no se sobrescribirá.")
	case errors.Is(err, records.ErrNoStudents):
		v.println("No hay alumnos registrados para guardar en el fichero.")
	default:
		logger.WithError(err).Error("error exporting students to text")
		v.println("❌ Se produjo un error al escribir en el fichero. Revisa los logs para más detalles.")
	}
	return false, nil
}

func (v *View) importText(ctx context.Context) (bool, error) {
	result, err := v.records.ImportText(ctx)
	switch {
	case err == nil:
		v.printf("✅ %d alumnos leídos e insertados correctamente desde el fichero '%s' (%d descartados).\n",
			result.Inserted, records.TextFileName, result.Skipped)
		return true, nil
	case errors.Is(err, records.ErrNothingImported):
		v.printf("❌ No se insertó ningún alumno (%d líneas descartadas).\n", result.Skipped)
	default:
		logger.WithError(err).Error("error importing students from text")
		v.println("❌ Ocurrió un error al procesar el fichero.")
	}
	return false, nil
}

func (v *View) exportXML(ctx context.Context) (bool, error) {
	count, err := v.records.ExportXML(ctx)
	switch {
	case err == nil:
		v.printf("✅ %d grupos guardados correctamente en '%s'.\n", count, records.XMLFileName)
		return true, nil
	case errors.Is(err, records.ErrNoGroups):
		v.println("⚠ No hay grupos registrados para guardar.")
	default:
		logger.WithError(err).Error("error exporting groups to XML")
		v.println("❌ Error al guardar el archivo XML.")
	}
	return false, nil
}

func (v *View) importXML(ctx context.Context) (bool, error) {
	path := filepath.Join(v.records.Dir(), records.XMLFileName)
	if _, err := os.Stat(path); err != nil {
		v.printf("❌ El archivo XML no existe en la ruta especificada: %s\n", path)
		return false, nil
	}
	result, err := v.records.ImportXML(ctx)
	if err != nil {
		logger.WithError(err).Error("error importing groups from XML")
		v.println("❌ Error al procesar el archivo XML.")
		return false, nil
	}
	v.printf("✅ Archivo XML leído correctamente. %d alumnos guardados en la base de datos.\n", result.Inserted)
	return true, nil
}

func (v *View) exportGroupXML(ctx context.Context) (bool, error) {
	if ok, err := v.showGroups(ctx); err != nil || !ok {
		return false, err
	}
	name, err := v.prompt("\nIntroduce el nombre del grupo que deseas guardar en fichero XML: ")
	if err != nil {
		return false, err
	}
	name = groups.NormalizeName(name)
	var inputErr error
	path, err := v.records.ExportGroupXML(ctx, name, v.overwriteConfirmation(&inputErr))
	if inputErr != nil {
		return false, inputErr
	}
	switch {
	case err == nil:
		v.printf("✅ El archivo XML del grupo '%s' se ha guardado correctamente en '%s'.\n", name, path)
		return true, nil
	case errors.Is(err, store.ErrGroupNotFound):
		v.printf("❌ El grupo '%s' no existe.\n", name)
	case errors.Is(err, records.ErrOverwriteDeclined):
		v.println("Operación cancelada. El fichero no se sobrescribirá.")
	default:
		logger.WithError(err).Errorf("error exporting group %s to XML", name)
		v.println("❌ Error al guardar el grupo en XML.")
	}
	return false, nil
}
