/*
Package session implements session management and persistence orchestration.

The workflow engine never holds sessions; the Manager loads them by ID,
serializes concurrent access per session (in process, and across replicas
when a distributed locker is configured) and saves the result.
*/
package session
