package main

import "fmt"

func area(w, h int) int {
	a := w * h
	fmt.Println(a)
	return 0
}

func main() {
	fmt.Println(area(1, 2), volume(1, 2, 3))
	skipped(3, 4)
}

//<<<<<dups,6,2,7,16,true,pass
