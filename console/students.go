package console

import (
	"context"
	"errors"

	"github.com/APB2021/student_manager/elements/groups"
	"github.com/APB2021/student_manager/elements/students"
	"github.com/APB2021/student_manager/store"
	"github.com/APB2021/student_manager/util/containers"
)

func (v *View) printStudent(s *students.Student) {
	v.printf("NIA: %d\nNombre: %s\nApellidos: %s\nGénero: %s\nFecha de nacimiento: %s\nCiclo: %s\nCurso: %s\nGrupo: %s\n-------------------------\n",
		s.NIA, s.Name, s.Surname, s.Gender, students.FormatBirthDate(s.BirthDate), s.Cycle, s.Course, s.GroupName())
}

// ask for the data of a new student. Gender and group are asked again until valid, the birth date only once. A nil
// student is returned when the birth date is invalid or the group doesn't exist
func (v *View) captureStudent(ctx context.Context) (*students.Student, error) {
	name, err := v.prompt("Introduce el nombre del alumno: ")
	if err != nil {
		return nil, err
	}
	surname, err := v.prompt("Introduce los apellidos del alumno: ")
	if err != nil {
		return nil, err
	}
	var gender students.Gender
	for {
		answer, err := v.prompt("Introduce el género del alumno (M/F): ")
		if err != nil {
			return nil, err
		}
		if gender, err = students.ParseGender(answer); err == nil {
			break
		}
		v.println("Respuesta no válida. Introduce 'M' o 'F'.")
	}
	answer, err := v.prompt("Introduce la fecha de nacimiento (dd-MM-aaaa): ")
	if err != nil {
		return nil, err
	}
	birthDate, err := students.ParseBirthDate(answer)
	if err != nil {
		v.println("❌ Formato de fecha inválido.")
		return nil, nil
	}
	cycle, err := v.prompt("Introduce el ciclo del alumno: ")
	if err != nil {
		return nil, err
	}
	course, err := v.prompt("Introduce el curso del alumno: ")
	if err != nil {
		return nil, err
	}
	var groupName string
	for {
		answer, err := v.prompt("Introduce el nombre del grupo del alumno: ")
		if err != nil {
			return nil, err
		}
		groupName = groups.NormalizeName(answer)
		if groups.ValidateName(groupName) == nil {
			break
		}
		v.println("El nombre del grupo no es válido. Intenta de nuevo.")
	}
	group, err := v.store.GetGroup(ctx, groupName)
	if err != nil {
		if !errors.Is(err, store.ErrGroupNotFound) {
			logger.WithError(err).Errorf("error looking up group %s", groupName)
		}
		v.println("❌ El grupo no existe en la BD. Debes crearlo antes de asignarlo a un alumno.")
		return nil, nil
	}
	return students.New(name, surname, gender, birthDate, cycle, course, group), nil
}

func (v *View) insertStudent(ctx context.Context) (bool, error) {
	s, err := v.captureStudent(ctx)
	if err != nil {
		return false, err
	}
	if s == nil {
		v.println("❌ No se pudo crear el alumno.")
		return false, nil
	}
	if err := v.store.InsertStudent(ctx, s); err != nil {
		logger.WithError(err).Error("error inserting student")
		v.println("❌ Error al insertar el alumno.")
		return false, nil
	}
	v.printf("✅ Alumno insertado correctamente con NIA %d.\n", s.NIA)
	return true, nil
}

func (v *View) listAllStudents(ctx context.Context) (bool, error) {
	list, err := v.store.ListStudents(ctx)
	if err != nil {
		logger.WithError(err).Error("error listing students")
		v.println("❌ No se pudieron mostrar los alumnos.")
		return false, nil
	}
	if len(list) == 0 {
		v.println("No hay alumnos registrados.")
		return false, nil
	}
	v.println("Lista completa de alumnos registrados:")
	for _, s := range list {
		v.printStudent(s)
	}
	return true, nil
}

// list NIA and name of every student and let the user pick one to show in full, until a listed NIA or 0 is given
func (v *View) selectStudent(ctx context.Context) (bool, error) {
	list, err := v.store.ListStudents(ctx)
	if err != nil {
		logger.WithError(err).Error("error listing students")
		v.println("❌ No se pudieron mostrar los alumnos.")
		return false, nil
	}
	if len(list) == 0 {
		v.println("No hay alumnos registrados.")
		return false, nil
	}
	v.println("Lista de alumnos (NIA y Nombre):")
	listed := containers.NewIntSet()
	for _, s := range list {
		v.printf("NIA: %d, Nombre: %s\n", s.NIA, s.Name)
		listed.Add(s.NIA)
	}
	v.println("\nIntroduce el NIA del alumno que deseas visualizar (o 0 para salir):")
	for {
		nia, ok, err := v.promptInt("")
		if err != nil {
			return false, err
		}
		switch {
		case !ok:
		case nia == 0:
			v.println("Saliendo sin seleccionar un alumno.")
			return true, nil
		case listed.Contains(nia):
			s, err := v.store.GetStudent(ctx, nia)
			if err != nil {
				logger.WithError(err).Errorf("error reading student %d", nia)
				v.println("❌ No se encontró un alumno con el NIA proporcionado.")
				return false, nil
			}
			v.println("-------------------------")
			v.printStudent(s)
			return true, nil
		default:
			v.println("El NIA seleccionado no está en la lista. Inténtalo de nuevo.")
		}
	}
}

func (v *View) renameStudent(ctx context.Context) (bool, error) {
	nia, ok, err := v.promptInt("Introduce el NIA del alumno cuyo nombre quieres modificar: ")
	if err != nil || !ok {
		return false, err
	}
	name, err := v.prompt("Introduce el nuevo nombre para el alumno: ")
	if err != nil {
		return false, err
	}
	if name == "" {
		v.println("❌ El nombre no puede estar vacío.")
		return false, nil
	}
	if err := v.store.UpdateStudentName(ctx, nia, name); err != nil {
		if !errors.Is(err, store.ErrStudentNotFound) {
			logger.WithError(err).Errorf("error renaming student %d", nia)
		}
		v.println("⚠ No se pudo modificar el nombre del alumno. Verifica el NIA.")
		return false, nil
	}
	v.println("✅ Nombre del alumno modificado correctamente.")
	return true, nil
}

func (v *View) deleteStudent(ctx context.Context) (bool, error) {
	nia, ok, err := v.promptInt("Introduce el NIA del alumno a eliminar: ")
	if err != nil || !ok {
		return false, err
	}
	if err := v.store.DeleteStudent(ctx, nia); err != nil {
		if !errors.Is(err, store.ErrStudentNotFound) {
			logger.WithError(err).Errorf("error deleting student %d", nia)
		}
		v.println("❌ No se encontró un alumno con el NIA proporcionado.")
		return false, nil
	}
	v.printf("✅ Alumno con NIA %d eliminado correctamente.\n", nia)
	return true, nil
}

func (v *View) changeStudentGroup(ctx context.Context) (bool, error) {
	list, err := v.store.ListStudents(ctx)
	if err != nil {
		logger.WithError(err).Error("error listing students")
		v.println("❌ No se pudieron mostrar los alumnos.")
		return false, nil
	}
	if len(list) == 0 {
		v.println("No hay alumnos registrados.")
		return false, nil
	}
	v.println("Lista de alumnos disponibles para cambiar de grupo:")
	for _, s := range list {
		v.printf("NIA: %d, Nombre: %s %s, Grupo: %s\n", s.NIA, s.Name, s.Surname, s.GroupName())
	}
	nia, ok, err := v.promptInt("\nIntroduce el NIA del alumno al que deseas cambiar de grupo: ")
	if err != nil || !ok {
		return false, err
	}
	if ok, err := v.showGroups(ctx); err != nil || !ok {
		return false, err
	}
	groupName, err := v.prompt("\nIntroduce el nombre del grupo al que deseas cambiar al alumno: ")
	if err != nil {
		return false, err
	}
	groupName = groups.NormalizeName(groupName)
	switch err := v.store.ChangeStudentGroup(ctx, nia, groupName); {
	case err == nil:
		v.println("✅ El grupo del alumno ha sido cambiado exitosamente.")
		return true, nil
	case errors.Is(err, store.ErrStudentNotFound):
		v.println("❌ No se encontró un alumno con el NIA proporcionado.")
	case errors.Is(err, store.ErrGroupNotFound):
		v.println("❌ El grupo especificado no existe.")
	case errors.Is(err, store.ErrSameGroup):
		v.printf("⚠️ El alumno ya pertenece al grupo '%s'.\n", groupName)
	default:
		logger.WithError(err).Errorf("error moving student %d to group %s", nia, groupName)
		v.println("❌ Error al cambiar el grupo del alumno.")
	}
	return false, nil
}
