package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// experience, education and certifications make up the resume section

func ListExperiences(ctx context.Context) ([]*Experience, error) {
	experiences := []*Experience{}
	err := Conn.SelectContext(ctx, &experiences, "SELECT * FROM experiences ORDER BY sort_order ASC, start_date DESC")
	if err != nil {
		return nil, fmt.Errorf("error listing experiences: %v", err)
	}
	for _, e := range experiences {
		e.hydrate()
	}
	return experiences, nil
}

func GetExperience(id string) (*Experience, error) {
	var experience Experience
	err := Conn.Get(&experience, Conn.Rebind("SELECT * FROM experiences WHERE id = ?"), id)
	if err != nil {
		return nil, fmt.Errorf("error getting experience: %w", notFoundIfNoRows(err, "experience"))
	}
	experience.hydrate()
	return &experience, nil
}

func CreateExperience(experience *Experience, tx *sqlx.Tx) error {
	experience.Id = uuid.New().String()
	experience.CreatedAt = now()
	experience.UpdatedAt = experience.CreatedAt
	experience.dehydrate()

	_, err := tx.NamedExec(`INSERT INTO experiences (id, company, role, location, start_date, end_date, description, highlights, sort_order, created_at, updated_at)
	VALUES (:id, :company, :role, :location, :start_date, :end_date, :description, :highlights, :sort_order, :created_at, :updated_at)`, experience)

	if err != nil {
		return fmt.Errorf("error creating experience: %v", err)
	}
	return nil
}

func UpdateExperience(experience *Experience, tx *sqlx.Tx) error {
	experience.UpdatedAt = now()
	experience.dehydrate()

	res, err := tx.NamedExec(`UPDATE experiences SET company = :company, role = :role, location = :location, start_date = :start_date,
	end_date = :end_date, description = :description, highlights = :highlights, sort_order = :sort_order, updated_at = :updated_at
	WHERE id = :id`, experience)

	if err != nil {
		return fmt.Errorf("error updating experience: %v", err)
	}
	return checkAffected(res, "experience")
}

func DeleteExperience(id string) error {
	res, err := Conn.Exec(Conn.Rebind("DELETE FROM experiences WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("error deleting experience: %v", err)
	}
	return checkAffected(res, "experience")
}

func ListEducations(ctx context.Context) ([]*Education, error) {
	educations := []*Education{}
	err := Conn.SelectContext(ctx, &educations, "SELECT * FROM educations ORDER BY start_date DESC")
	if err != nil {
		return nil, fmt.Errorf("error listing educations: %v", err)
	}
	return educations, nil
}

func GetEducation(id string) (*Education, error) {
	var education Education
	err := Conn.Get(&education, Conn.Rebind("SELECT * FROM educations WHERE id = ?"), id)
	if err != nil {
		return nil, fmt.Errorf("error getting education: %w", notFoundIfNoRows(err, "education"))
	}
	return &education, nil
}

func CreateEducation(education *Education, tx *sqlx.Tx) error {
	education.Id = uuid.New().String()
	education.CreatedAt = now()
	education.UpdatedAt = education.CreatedAt

	_, err := tx.NamedExec(`INSERT INTO educations (id, institution, degree, field, start_date, end_date, description, created_at, updated_at)
	VALUES (:id, :institution, :degree, :field, :start_date, :end_date, :description, :created_at, :updated_at)`, education)

	if err != nil {
		return fmt.Errorf("error creating education: %v", err)
	}
	return nil
}

func UpdateEducation(education *Education, tx *sqlx.Tx) error {
	education.UpdatedAt = now()

	res, err := tx.NamedExec(`UPDATE educations SET institution = :institution, degree = :degree, field = :field,
	start_date = :start_date, end_date = :end_date, description = :description, updated_at = :updated_at
	WHERE id = :id`, education)

	if err != nil {
		return fmt.Errorf("error updating education: %v", err)
	}
	return checkAffected(res, "education")
}

func DeleteEducation(id string) error {
	res, err := Conn.Exec(Conn.Rebind("DELETE FROM educations WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("error deleting education: %v", err)
	}
	return checkAffected(res, "education")
}

func ListCertifications(ctx context.Context) ([]*Certification, error) {
	certifications := []*Certification{}
	err := Conn.SelectContext(ctx, &certifications, "SELECT * FROM certifications ORDER BY issued_at DESC")
	if err != nil {
		return nil, fmt.Errorf("error listing certifications: %v", err)
	}
	return certifications, nil
}

func GetCertification(id string) (*Certification, error) {
	var certification Certification
	err := Conn.Get(&certification, Conn.Rebind("SELECT * FROM certifications WHERE id = ?"), id)
	if err != nil {
		return nil, fmt.Errorf("error getting certification: %w", notFoundIfNoRows(err, "certification"))
	}
	return &certification, nil
}

func CreateCertification(certification *Certification, tx *sqlx.Tx) error {
	certification.Id = uuid.New().String()
	certification.CreatedAt = now()
	certification.UpdatedAt = certification.CreatedAt

	_, err := tx.NamedExec(`INSERT INTO certifications (id, name, issuer, issued_at, expires_at, credential_url, created_at, updated_at)
	VALUES (:id, :name, :issuer, :issued_at, :expires_at, :credential_url, :created_at, :updated_at)`, certification)

	if err != nil {
		return fmt.Errorf("error creating certification: %v", err)
	}
	return nil
}

func UpdateCertification(certification *Certification, tx *sqlx.Tx) error {
	certification.UpdatedAt = now()

	res, err := tx.NamedExec(`UPDATE certifications SET name = :name, issuer = :issuer, issued_at = :issued_at,
	expires_at = :expires_at, credential_url = :credential_url, updated_at = :updated_at
	WHERE id = :id`, certification)

	if err != nil {
		return fmt.Errorf("error updating certification: %v", err)
	}
	return checkAffected(res, "certification")
}

func DeleteCertification(id string) error {
	res, err := Conn.Exec(Conn.Rebind("DELETE FROM certifications WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("error deleting certification: %v", err)
	}
	return checkAffected(res, "certification")
}
