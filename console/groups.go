package console

import (
	"context"
	"errors"

	"github.com/APB2021/student_manager/elements/groups"
	"github.com/APB2021/student_manager/store"
)

// print the names of all groups. false is returned when there are none
func (v *View) showGroups(ctx context.Context) (bool, error) {
	list, err := v.store.ListGroups(ctx)
	if err != nil {
		logger.WithError(err).Error("error listing groups")
		v.println("❌ Error al mostrar los grupos.")
		return false, nil
	}
	if len(list) == 0 {
		v.println("❌ No hay grupos registrados.")
		return false, nil
	}
	v.println("Grupos disponibles:")
	for _, g := range list {
		v.printf("- %s\n", g.Name)
	}
	return true, nil
}

func (v *View) insertGroup(ctx context.Context) (bool, error) {
	var name string
	for {
		answer, err := v.prompt("Introduce el nombre del nuevo grupo (una letra): ")
		if err != nil {
			return false, err
		}
		name = groups.NormalizeName(answer)
		if groups.ValidateName(name) == nil {
			break
		}
		v.println("El nombre del grupo debe ser una sola letra.")
	}
	if err := v.store.InsertGroup(ctx, groups.New(name)); err != nil {
		if errors.Is(err, store.ErrGroupExists) {
			v.printf("❌ El grupo '%s' ya existe.\n", name)
		} else {
			logger.WithError(err).Errorf("error inserting group %s", name)
			v.println("❌ Error al insertar el grupo.")
		}
		return false, nil
	}
	v.println("✅ Grupo insertado correctamente.")
	return true, nil
}

func (v *View) listStudentsByGroup(ctx context.Context) (bool, error) {
	if ok, err := v.showGroups(ctx); err != nil || !ok {
		return false, err
	}
	name, err := v.prompt("\nIntroduce el nombre del grupo que deseas consultar: ")
	if err != nil {
		return false, err
	}
	name = groups.NormalizeName(name)
	list, err := v.store.ListStudentsByGroup(ctx, name)
	if err != nil {
		if errors.Is(err, store.ErrGroupNotFound) {
			v.printf("❌ El grupo \"%s\" no existe.\n", name)
		} else {
			logger.WithError(err).Errorf("error listing students of group %s", name)
			v.println("❌ Error al mostrar los alumnos del grupo.")
		}
		return false, nil
	}
	if len(list) == 0 {
		v.printf("⚠️ No hay alumnos registrados en el grupo \"%s\".\n", name)
		return false, nil
	}
	v.printf("\n--- Alumnos del grupo \"%s\" ---\n", name)
	for _, s := range list {
		v.printStudent(s)
	}
	return true, nil
}

func (v *View) deleteStudentsByGroup(ctx context.Context) (bool, error) {
	if ok, err := v.showGroups(ctx); err != nil || !ok {
		return false, err
	}
	name, err := v.prompt("Introduce el nombre del grupo cuyos alumnos deseas eliminar: ")
	if err != nil {
		return false, err
	}
	name = groups.NormalizeName(name)
	confirmed, err := v.confirm("¿Estás seguro de que deseas eliminar todos los alumnos del grupo " + name + "?")
	if err != nil {
		return false, err
	}
	if !confirmed {
		v.println("Operación cancelada por el usuario.")
		return false, nil
	}
	removed, err := v.store.DeleteStudentsByGroup(ctx, name)
	if err != nil {
		if errors.Is(err, store.ErrGroupNotFound) {
			v.printf("❌ El grupo '%s' no existe.\n", name)
		} else {
			logger.WithError(err).Errorf("error deleting students of group %s", name)
			v.println("❌ No se pudieron eliminar los alumnos. Verifica el nombre del grupo.")
		}
		return false, nil
	}
	if removed == 0 {
		v.printf("⚠️ El grupo '%s' no tiene alumnos.\n", name)
		return false, nil
	}
	v.printf("✅ Se han eliminado %d alumnos del grupo '%s'.\n", removed, name)
	return true, nil
}
